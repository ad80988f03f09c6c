package unsplash

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// URLsDTO is the wire form of a photo's rendition URLs.
type URLsDTO struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// ProfileImageDTO is the wire form of an author's avatar URLs.
type ProfileImageDTO struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// UserDTO is the wire form of a photo author.
type UserDTO struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	FirstName    string          `json:"first_name"`
	LastName     *string         `json:"last_name"`
	ProfileImage ProfileImageDTO `json:"profile_image"`
}

// PhotoDTO is the wire form of a photo record.
type PhotoDTO struct {
	ID          string    `json:"id"`
	User        UserDTO   `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Color       string    `json:"color"`
	URLs        URLsDTO   `json:"urls"`
	Description *string   `json:"description"`
}

// PhotoList is a list of photo records that tolerates bad elements.
// A record that fails to decode is dropped instead of failing the whole
// list; only a body that is not a JSON array is an error.
type PhotoList []PhotoDTO

// UnmarshalJSON implements json.Unmarshaler.
func (l *PhotoList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("photo list: %w", err)
	}

	out := make(PhotoList, 0, len(raw))
	dropped := 0
	for _, element := range raw {
		var dto PhotoDTO
		if err := json.Unmarshal(element, &dto); err != nil || dto.ID == "" {
			dropped++
			continue
		}
		out = append(out, dto)
	}

	if dropped > 0 {
		log.Debug().
			Int("dropped", dropped).
			Int("kept", len(out)).
			Msg("Dropped malformed photo records")
	}

	*l = out
	return nil
}

// SearchResultDTO is the wire form of /search/photos.
type SearchResultDTO struct {
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Results    PhotoList `json:"results"`
}
