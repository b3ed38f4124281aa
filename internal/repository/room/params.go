package room

type AddMemberParams struct {
	RoomCode    string
	ConnId      string
	DisplayName string
	IsHost      bool
}

type RemoveMemberParams struct {
	RoomCode string
	ConnId   string
}

type GetMemberParams struct {
	RoomCode string
	ConnId   string
}

type UpdateMemberIsHostParams struct {
	RoomCode string
	ConnId   string
	IsHost   bool
}

type SetMediaParams struct {
	RoomCode string
	Media    Media
}

type SetPlaybackParams struct {
	RoomCode string
	Playback Playback
}
