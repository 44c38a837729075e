package server

// APIResponse is the envelope of the JSON endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthData is returned by /health.
type HealthData struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
