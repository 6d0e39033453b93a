package upload

// StatusSuccess is the status value the backend sets on a usable result.
const StatusSuccess = "success"

// ResultPayload is the backend's response envelope. Every field except
// Status may be empty; consumers substitute their own fallbacks.
type ResultPayload struct {
	Status      string `json:"status"`
	EnglishText string `json:"english_text"`
	ISLText     string `json:"isl_text"`
	VideoPath   string `json:"video_path"`
	Message     string `json:"message,omitempty"`
}
