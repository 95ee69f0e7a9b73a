// Package llm provides the text-completion capability used for transaction analysis
// and chatbot extraction. It supports OpenAI and Anthropic providers plus a scripted
// fake, with optional response caching and client-side rate limiting.
package llm
