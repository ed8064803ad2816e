package common

// UserCreatedEvent is published on UserExchange after a successful registration.
type UserCreatedEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// MediaOrphanedEvent names an uploaded asset that no blog references any more.
type MediaOrphanedEvent struct {
	AssetID string `json:"asset_id"`
}
