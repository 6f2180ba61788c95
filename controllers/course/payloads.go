package controllers

// Request payloads shared between the course validators and controllers.

type CoursePayload struct {
	Title         string  `json:"title" validate:"required,min=3,max=200"`
	Description   string  `json:"description" validate:"required,min=5"`
	Price         float64 `json:"price" validate:"gte=0"`
	CategoryID    *uint   `json:"category_id"`
	Level         string  `json:"level"`
	DurationWeeks int     `json:"duration_weeks" validate:"gte=0"`
	PayoutMethod  string  `json:"payout_method"`
	PayoutDetails string  `json:"payout_details"`
}

type SectionPayload struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
}

type ReorderPayload struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

type RejectionPayload struct {
	Comment string `json:"comment" validate:"required,min=5"`
}

type PurchasePayload struct {
	PaymentMethod string `json:"payment_method"`
}

type PracticePayload struct {
	Language string `json:"language" validate:"required"`
	Code     string `json:"code" validate:"required"`
}
