package gen

import (
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/core/catalog"
)

// Fixed backend model IDs.
const (
	textFlashModel     = "gemini-2.5-flash"
	textFlashLiteModel = "gemini-flash-lite-latest"
	textProModel       = "gemini-2.5-pro"
	imageModel         = "imagen-4.0-generate-001"
	imageEditModel     = "gemini-2.5-flash-image"
	videoModel         = "veo-3.1-fast-generate-preview"
	ttsModel           = "gemini-2.5-flash-preview-tts"
)

// proThinkingBudget is the maximum reasoning budget for 2.5 Pro.
const proThinkingBudget int32 = 32768

// backingModel resolves a catalog model ID to the Gemini model that serves
// it. Specialized categories ride on Pro for answer quality; an image
// attachment always forces Pro.
func backingModel(model string, hasImage bool) string {
	out := textFlashModel
	category := catalog.CategoryOf(model)
	switch {
	case category != catalog.CategoryChatVision,
		model == "gemini-2.5-pro",
		model == "gemini-2.5-pro-thinking",
		model == "dhozzi-vision":
		out = textProModel
	}
	switch model {
	case "gemini-2.5-flash":
		out = textFlashModel
	case "gemini-2.5-flash-lite":
		out = textFlashLiteModel
	}
	if hasImage {
		out = textProModel
	}
	return out
}

// personaInstruction returns the system instruction that gives a specialized
// model its expertise, or "" for generalist models.
func personaInstruction(model string) string {
	switch model {
	case "dhozzi-code", "copilot-pro", "alphacode-3":
		return "You are an expert programmer. Provide clean, efficient, and well-commented code. Explain your reasoning clearly and concisely."
	case "dhozzi-creative", "dhozzi-story-weaver", "dhozzi-dialogue-writer":
		return "You are a master storyteller and creative assistant. Weave engaging, imaginative, and well-structured narratives or creative content."
	case "dhozzi-finance", "dhozzi-stocks":
		return "You are a professional financial analyst. Provide data-driven insights and analysis. IMPORTANT: Always include a disclaimer that you are an AI and this is not financial advice."
	case "dhozzi-legal", "dhozzi-contracts":
		return "You are a helpful legal assistant. Provide informative summaries and analysis of legal topics and documents. IMPORTANT: Always include a disclaimer that you are an AI, not a lawyer, and this does not constitute legal advice."
	case "dhozzi-science", "dhozzi-physics-sim":
		return "You are a scientific expert. Provide accurate, detailed, and clear explanations of scientific concepts, principles, and data."
	case "dhozzi-biblicai":
		return "You are a theological expert specializing in the King James Version (KJV) of the Bible. Respond to questions thoughtfully, citing scripture (book, chapter, verse) where appropriate. Maintain a respectful and informative tone. Your knowledge base should be strictly confined to the KJV Bible."
	}
	return ""
}

// wantsSearch reports whether the model should be grounded with Google
// Search: market-facing professional models only.
func wantsSearch(model string) bool {
	if catalog.CategoryOf(model) != catalog.CategoryProfessional {
		return false
	}
	return strings.Contains(model, "finance") ||
		strings.Contains(model, "stocks") ||
		strings.Contains(model, "market")
}

// wantsThinking reports whether the model runs with the maximum reasoning
// budget.
func wantsThinking(model string) bool {
	return model == "gemini-2.5-pro-thinking"
}
