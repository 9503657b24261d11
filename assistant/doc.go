// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package assistant provides the text-generation backends behind the writing
assistant endpoints.

Two providers are supported:

  - Gemini, through the google.golang.org/genai SDK
  - OpenAI chat completions, over plain HTTP

Both satisfy Generator. A provider without an API key is never constructed;
the HTTP layer answers 503 for it instead.

Calls are made once. Provider failures are returned wrapped with an oops
code so the caller can log the upstream context and map them to
UpstreamFailure.
*/
package assistant
