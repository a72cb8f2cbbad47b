package dto

// JSONToken is the client-credentials token response.
type JSONToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// JSONSearch is the response of GET /v1/search?type=track.
type JSONSearch struct {
	Tracks struct {
		Items []JSONTrack `json:"items"`
		Total int         `json:"total"`
	} `json:"tracks"`
}

// JSONPlaylistPage is one page of GET /v1/playlists/{id}/tracks.
type JSONPlaylistPage struct {
	Items []JSONPlaylistItem `json:"items"`
	Total int                `json:"total"`
	Next  *string            `json:"next"`
}

// JSONPlaylistItem wraps a track; Track is null for removed or local items.
type JSONPlaylistItem struct {
	Track *JSONTrack `json:"track"`
}
