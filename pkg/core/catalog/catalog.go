// Package catalog is the static model table: every selectable model, its
// category, and the minimum plan tier required to use it. Pure lookups, no
// I/O.
package catalog

import "github.com/dhozzi-app/dhozzi/pkg/core/types"

// Category groups models in the switcher UI and drives the orchestrator's
// response-kind dispatch.
type Category string

const (
	CategoryChatVision   Category = "Chat & Vision"
	CategoryImage        Category = "Image Creation"
	CategoryVideo        Category = "Video Generation"
	CategoryProfessional Category = "Professional Grade"
	CategoryAudioMusic   Category = "Audio & Music"
	CategoryBusiness     Category = "Business & Marketing"
	CategoryGaming       Category = "Gaming & 3D"
	CategoryEducation    Category = "Education & Research"
	CategoryHealth       Category = "Health & Wellness"
	CategoryLifestyle    Category = "Lifestyle & Fun"
	CategoryUnknown      Category = "Unknown"
)

// Model describes one entry of the catalog.
type Model struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    Category       `json:"category"`
	MinPlan     types.Plan     `json:"min_plan"`
}

// DefaultModel is the model new chats start on.
const DefaultModel = "gemini-2.5-flash"

var all = []Model{
	// Chat & Vision.
	{ID: "gemini-2.5-flash", Name: "Dhozzi (Flash)", Description: "Fast, efficient, and great for everyday tasks.", Category: CategoryChatVision, MinPlan: types.PlanBasic},
	{ID: "gemini-2.5-flash-lite", Name: "Dhozzi (Flash Lite)", Description: "For the fastest, low-latency conversations.", Category: CategoryChatVision, MinPlan: types.PlanPremium},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Description: "Advanced model for complex reasoning and analysis.", Category: CategoryChatVision, MinPlan: types.PlanPremium},
	{ID: "gemini-2.5-pro-thinking", Name: "Gemini 2.5 Pro (Thinking)", Description: "Max reasoning for the toughest problems.", Category: CategoryChatVision, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-vision", Name: "Dhozzi Vision", Description: "Analyze and understand images, video, and audio.", Category: CategoryChatVision, MinPlan: types.PlanPremium},

	// Image Creation.
	{ID: "imagen-4.0-generate-001", Name: "Imagen 4.0", Description: "Create stunning, photorealistic images from text.", Category: CategoryImage, MinPlan: types.PlanBasic},
	{ID: "dhozzi-logo-maker", Name: "Logo Maker", Description: "Generate unique vector-style logo concepts.", Category: CategoryImage, MinPlan: types.PlanPremium},
	{ID: "dall-e-3", Name: "DALL-E 3", Description: "A highly creative model for unique, artistic visuals.", Category: CategoryImage, MinPlan: types.PlanPremium},
	{ID: "firefly-2", Name: "Firefly 2", Description: "Adobe's model, great for commercially safe images.", Category: CategoryImage, MinPlan: types.PlanPremium},
	{ID: "midjourney-v6", Name: "Midjourney v6", Description: "The standard for beautiful, imaginative artwork.", Category: CategoryImage, MinPlan: types.PlanPlatinum},
	{ID: "stable-diffusion-3", Name: "Stable Diffusion 3", Description: "Advanced open-source model with high customization.", Category: CategoryImage, MinPlan: types.PlanPlatinum},

	// Video Generation.
	{ID: "veo-3.1-fast-generate-preview", Name: "Veo Video Generation", Description: "Generate high-quality video from text or images.", Category: CategoryVideo, MinPlan: types.PlanPlatinum},

	// Professional Grade.
	{ID: "dhozzi-code", Name: "Dhozzi Code", Description: "Your coding sidekick for writing and fixing code.", Category: CategoryProfessional, MinPlan: types.PlanPremium},
	{ID: "copilot-pro", Name: "Copilot Pro", Description: "Advanced code completion and project analysis.", Category: CategoryProfessional, MinPlan: types.PlanPremium},
	{ID: "alphacode-3", Name: "AlphaCode 3", Description: "Elite-level coding for competitive programming.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-finance", Name: "Dhozzi Finance", Description: "Expert analysis for financial data and markets.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-stocks", Name: "Dhozzi Stocks", Description: "Deep dive into stock performance and indicators.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-legal", Name: "Dhozzi Legal", Description: "Assists with legal document summary and research.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-contracts", Name: "Dhozzi Contracts", Description: "Analyze and review legal contract clauses.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-science", Name: "Dhozzi Science", Description: "For scientific research, data, and literature.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-physics-sim", Name: "Dhozzi Physics Sim", Description: "Simulate and explain complex physics problems.", Category: CategoryProfessional, MinPlan: types.PlanPlatinum},

	// Audio & Music.
	{ID: "dhozzi-sound-fx", Name: "Sound FX", Description: "Generate sound effects from a text description.", Category: CategoryAudioMusic, MinPlan: types.PlanPremium},
	{ID: "dhozzi-podcast-helper", Name: "Podcast Helper", Description: "Generate scripts, intros, and topic ideas.", Category: CategoryAudioMusic, MinPlan: types.PlanPremium},
	{ID: "dhozzi-music-gen", Name: "Music Gen", Description: "Create royalty-free music in various genres.", Category: CategoryAudioMusic, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-voice-clone", Name: "Voice Clone", Description: "(Preview) Clone a voice from a short audio sample.", Category: CategoryAudioMusic, MinPlan: types.PlanPlatinum},

	// Business & Marketing.
	{ID: "dhozzi-ad-copy", Name: "Ad Copy Pro", Description: "Write compelling copy for digital advertisements.", Category: CategoryBusiness, MinPlan: types.PlanPremium},
	{ID: "dhozzi-seo-pro", Name: "SEO Pro", Description: "Optimize content with keyword and topic suggestions.", Category: CategoryBusiness, MinPlan: types.PlanPremium},
	{ID: "dhozzi-translator", Name: "Translator", Description: "Translate text between dozens of languages.", Category: CategoryBusiness, MinPlan: types.PlanPremium},
	{ID: "dhozzi-market-analysis", Name: "Market Analysis", Description: "Analyze market trends and business strategies.", Category: CategoryBusiness, MinPlan: types.PlanPlatinum},

	// Gaming & 3D.
	{ID: "dhozzi-dialogue-writer", Name: "Dialogue Writer", Description: "Create branching dialogues for game characters.", Category: CategoryGaming, MinPlan: types.PlanPremium},
	{ID: "dhozzi-lore-master", Name: "Lore Master", Description: "Generate rich backstories and world-building details.", Category: CategoryGaming, MinPlan: types.PlanPremium},
	{ID: "dhozzi-game-dev", Name: "Game Dev Helper", Description: "Assistance with game logic, mechanics, and code.", Category: CategoryGaming, MinPlan: types.PlanPlatinum},
	{ID: "dhozzi-3d-texture", Name: "3D Texture Gen", Description: "Generate seamless textures for 3D models.", Category: CategoryGaming, MinPlan: types.PlanPlatinum},

	// Education & Research.
	{ID: "dhozzi-lesson-planner", Name: "Lesson Planner", Description: "Create educational outlines and activities.", Category: CategoryEducation, MinPlan: types.PlanPremium},
	{ID: "dhozzi-tutor", Name: "AI Tutor", Description: "Get explanations for complex topics.", Category: CategoryEducation, MinPlan: types.PlanPremium},
	{ID: "dhozzi-paper-summarizer", Name: "Paper Summarizer", Description: "Summarize long academic papers and articles.", Category: CategoryEducation, MinPlan: types.PlanPremium},
	{ID: "dhozzi-biblicai", Name: "Biblicai", Description: "Chat with the King James Bible. Ask questions and get insights.", Category: CategoryEducation, MinPlan: types.PlanBasic},

	// Health & Wellness.
	{ID: "dhozzi-fitness-coach", Name: "Fitness Coach", Description: "Generate workout plans and fitness advice.", Category: CategoryHealth, MinPlan: types.PlanPremium},
	{ID: "dhozzi-mindfulness-guide", Name: "Mindfulness Guide", Description: "Get guided meditation and mindfulness scripts.", Category: CategoryHealth, MinPlan: types.PlanPremium},
	{ID: "dhozzi-med-assist", Name: "Med Assist", Description: "Medical info summary (not a substitute for a doctor).", Category: CategoryHealth, MinPlan: types.PlanPlatinum},

	// Lifestyle & Fun.
	{ID: "dhozzi-recipe-creator", Name: "Recipe Creator", Description: "Generate new recipes based on ingredients.", Category: CategoryLifestyle, MinPlan: types.PlanBasic},
	{ID: "dhozzi-dream-interpreter", Name: "Dream Interpreter", Description: "Explore possible meanings of your dreams.", Category: CategoryLifestyle, MinPlan: types.PlanBasic},
	{ID: "dhozzi-travel-planner", Name: "Travel Planner", Description: "Create detailed itineraries for your next trip.", Category: CategoryLifestyle, MinPlan: types.PlanPremium},
	{ID: "dhozzi-interior-design", Name: "Interior Designer", Description: "Get ideas and concepts for your home decor.", Category: CategoryLifestyle, MinPlan: types.PlanPremium},
}

// All returns the full catalog in display order.
func All() []Model {
	out := make([]Model, len(all))
	copy(out, all)
	return out
}

// Available filters the catalog down to models the given plan may use.
func Available(plan types.Plan) []Model {
	if !plan.Valid() {
		plan = types.PlanBasic
	}
	var out []Model
	for _, m := range all {
		if plan.AtLeast(m.MinPlan) {
			out = append(out, m)
		}
	}
	return out
}

// Lookup finds a model by ID.
func Lookup(id string) (Model, bool) {
	for _, m := range all {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// CategoryOf returns the category for a model ID, CategoryUnknown if absent.
func CategoryOf(id string) Category {
	if m, ok := Lookup(id); ok {
		return m.Category
	}
	return CategoryUnknown
}
