package model

// ================ Config ================
type ConversationConfig struct {
	TTL        string `envconfig:"CONVERSATION_TTL" default:"24h"`
	StaleAfter string `envconfig:"CONVERSATION_STALE_AFTER" default:"24h"`
}

type ResponderModelConfig struct {
	Model       string  `envconfig:"RESPONDER_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"RESPONDER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONDER_TEMPERATURE" default:"0.3"`
}

type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.0"`
}

type PromptConfig struct {
	CompanyName  string `envconfig:"PROMPT_COMPANY_NAME" default:"RentalHeights Inc"`
	SupportPhone string `envconfig:"SUPPORT_PHONE" default:"+1234567890"`
	SupportEmail string `envconfig:"SUPPORT_EMAIL" default:"support@rentalheights.com"`
}

type PricingConfig struct {
	BaseDeliveryCost float64 `envconfig:"PRICING_BASE_DELIVERY_COST" default:"50"`
	WeekendSurcharge float64 `envconfig:"PRICING_WEEKEND_SURCHARGE" default:"1.2"`
	Currency         string  `envconfig:"PRICING_CURRENCY" default:"USD"`
}

type RateLimitConfig struct {
	PerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"10"`
	PerHour   int `envconfig:"RATE_LIMIT_PER_HOUR" default:"100"`
}
