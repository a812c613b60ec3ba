package game

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// MaxDisplayNameLength caps player display names
	MaxDisplayNameLength = 24

	// ReputationFloor and ReputationCeil bound a slot's reputation score
	ReputationFloor = 0
	ReputationCeil  = 100
)
