package room

const (
	MediaKindStreamed     = "streamed"
	MediaKindUploadedFile = "uploaded-file"
)

type Member struct {
	ConnId      string `json:"conn_id"`
	DisplayName string `json:"display_name"`
	IsHost      bool   `json:"is_host"`
}

type Media struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type Playback struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
	UpdatedAt int64   `json:"updated_at"`
}

// RoomSnapshot is the full authoritative room state a member renders from
// after joining. Media is nil until the host picks something to watch.
type RoomSnapshot struct {
	ConnId   string   `json:"conn_id"`
	RoomCode string   `json:"room_code"`
	Members  []Member `json:"members"`
	Media    *Media   `json:"media"`
	Playback Playback `json:"playback"`
}

type ChatMessage struct {
	Id        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
