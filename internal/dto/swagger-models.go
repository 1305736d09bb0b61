package dto

// ===== Common responses =====

type APIResponse struct {
	StatusCode int         `json:"statusCode" example:"200"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message" example:"Success"`
	Success    bool        `json:"success" example:"true"`
}

type APIError struct {
	StatusCode int      `json:"statusCode" example:"400"`
	Message    string   `json:"message" example:"All fields are required"`
	Success    bool     `json:"success" example:"false"`
	Errors     []string `json:"errors"`
}

type APISuccessLogin struct {
	StatusCode int           `json:"statusCode" example:"200"`
	Data       LoginResponse `json:"data"`
	Message    string        `json:"message" example:"User logged in successfully"`
	Success    bool          `json:"success" example:"true"`
}
