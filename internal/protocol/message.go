package protocol

// RoomList is the response for GET /api/rooms.
type RoomList struct {
	Vocabulary Vocabulary  `json:"vocabulary"`
	Rooms      []RoomState `json:"rooms"`
}

// UpdateRequest is the JSON body for POST /api/rooms/{room}/status.
// Status uses the client vocabulary.
type UpdateRequest struct {
	Status string `json:"status"`
}

// UpdateResponse is returned after a REST update was accepted and broadcast.
type UpdateResponse struct {
	Type       string     `json:"type"`
	Vocabulary Vocabulary `json:"vocabulary"`
	Room       string     `json:"room"`
	Status     string     `json:"status"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    string  `json:"uptime"`
	UptimeSec float64 `json:"uptime_seconds"`
	Rooms     int     `json:"rooms"`
	Clients   int     `json:"clients"`
}

// ErrorResponse is the body of every non-2xx REST reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
