package models

// OCRURLRequest asks for text extraction from a remote image
type OCRURLRequest struct {
	URL          string `json:"url" binding:"required,url"`
	Strategy     string `json:"strategy,omitempty"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// DetectionPayload is one word box as sent over the wire: four [x, y]
// corners clockwise from top-left
type DetectionPayload struct {
	Box        [][]float64 `json:"box" binding:"required"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// ReconstructRequest carries OCR output produced elsewhere
type ReconstructRequest struct {
	Detections    []DetectionPayload `json:"detections"`
	LineTolerance *float64           `json:"line_tolerance,omitempty"`
}

// HandwritingRequest is the text to render
type HandwritingRequest struct {
	Text string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// OCRResponse is the JSON form of an ExtractionResult
type OCRResponse struct {
	Text             string             `json:"text"`
	Lines            []string           `json:"lines"`
	Words            []DetectionPayload `json:"words,omitempty"`
	Strategy         string             `json:"strategy"`
	Engine           string             `json:"engine"`
	Source           string             `json:"source,omitempty"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	Accuracy         *AccuracyPayload   `json:"accuracy,omitempty"`
}

// AccuracyPayload compares the result with caller-supplied text
type AccuracyPayload struct {
	ExpectedText string  `json:"expected_text"`
	CER          float64 `json:"cer"`
	WER          float64 `json:"wer"`
	MatchScore   float64 `json:"match_score"`
}

// ReconstructResponse is the reading-order text rebuilt from detections
type ReconstructResponse struct {
	Text          string   `json:"text"`
	Lines         []string `json:"lines"`
	LineCount     int      `json:"line_count"`
	LineTolerance float64  `json:"line_tolerance"`
}

// HandwritingResponse carries the rendered image as a data URI
type HandwritingResponse struct {
	Image      string `json:"image"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	LineCount  int    `json:"line_count"`
	LineHeight int    `json:"line_height"`
	BlobURL    string `json:"blob_url,omitempty"`
}

// HealthResponse is served by /health
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version,omitempty"`
	Timestamp     string `json:"timestamp"`
}
