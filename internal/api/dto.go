package api

// ServiceName is reported by the health endpoint.
const ServiceName = "slidesdown-converter"

type ConvertRequest struct {
	Images []string `json:"images"`
	Title  string   `json:"title"`
	Format string   `json:"format"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
