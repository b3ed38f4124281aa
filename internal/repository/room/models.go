package room

type Member struct {
	ConnId      string `redis:"conn_id"`
	DisplayName string `redis:"display_name"`
	IsHost      bool   `redis:"is_host"`
}

type Media struct {
	URL  string `redis:"url"`
	Kind string `redis:"kind"`
}

type Playback struct {
	IsPlaying bool    `redis:"is_playing"`
	Position  float64 `redis:"position"`
	UpdatedAt int64   `redis:"updated_at"`
}
