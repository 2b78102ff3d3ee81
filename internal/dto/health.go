package dto

type HealthResponse struct {
	Status string `json:"status"`
	// GeneratorConfigured reports whether the generation credential is set.
	GeneratorConfigured bool `json:"generator_configured"`
}

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
