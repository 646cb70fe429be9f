package model

// VideoChannel represents a channel on the video platform.
// A row is identified either by ExternalID or by Link; both are unique.
type VideoChannel struct {
	ID         string  `json:"id" db:"id"`
	ExternalID *string `json:"externalId" db:"external_id"`
	Link       string  `json:"link" db:"link"`
	Name       string  `json:"name" db:"name"`
}

// VideoMetadata is what the external source knows about a single video
type VideoMetadata struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	ChannelExternalID string `json:"channelExternalId"`
	// Duration is either an ISO-8601 duration or a plain seconds value
	Duration    string `json:"duration"`
	PublishedAt string `json:"publishedAt"` // RFC 3339
}

// ChannelMetadata is what the external source knows about a channel
type ChannelMetadata struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}
