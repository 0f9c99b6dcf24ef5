// Package providers implements the Generator interface for each supported
// text-generation backend.
//
// Supported providers: Anthropic (Claude), OpenAI, Google (Gemini), and
// Ollama / LM Studio / other OpenAI-compatible local servers. OpenAI and the
// local servers share one chat-completions client built on go-openai.
//
// All providers share a retry helper with exponential back-off that retries
// rate limits and server errors but never authentication failures. HTTP
// clients are held in unexported fields so tests can point them at local
// httptest servers.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
