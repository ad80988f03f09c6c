package unsplash

import (
	"net/url"
	"strings"
	"time"
)

// Resolution is the pixel size of the original photo.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AspectRatio returns height/width, or 1 when the width is unknown.
func (r Resolution) AspectRatio() float64 {
	if r.Width <= 0 {
		return 1
	}
	return float64(r.Height) / float64(r.Width)
}

// URLs holds the rendition URLs of a photo.
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// ProfileImage holds an author's avatar URLs.
type ProfileImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// User is a photo author.
type User struct {
	ID           string       `json:"id"`
	Nickname     string       `json:"nickname"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	ProfileImage ProfileImage `json:"profile_image"`
}

// DisplayName returns "First Last", falling back to the nickname.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Nickname
	}
	return name
}

// Photo is the domain model of a photo.
type Photo struct {
	ID          string     `json:"id"`
	Author      User       `json:"author"`
	CreatedAt   time.Time  `json:"created_at"`
	Resolution  Resolution `json:"resolution"`
	Color       string     `json:"color"`
	URLs        URLs       `json:"urls"`
	Description string     `json:"description,omitempty"`
}

// PhotoID returns the identity used for deduplication.
func PhotoID(p Photo) string { return p.ID }

// SearchResult is a page of search results plus the total match count.
type SearchResult struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Photos     []Photo `json:"photos"`
}

// PhotoFromDTO maps a wire record to the domain model. It reports false when
// any URL is not absolute.
func PhotoFromDTO(dto PhotoDTO) (Photo, bool) {
	author, ok := userFromDTO(dto.User)
	if !ok {
		return Photo{}, false
	}

	urls := URLs{
		Raw:     dto.URLs.Raw,
		Full:    dto.URLs.Full,
		Regular: dto.URLs.Regular,
		Small:   dto.URLs.Small,
		Thumb:   dto.URLs.Thumb,
	}
	if !allAbsolute(urls.Raw, urls.Full, urls.Regular, urls.Small, urls.Thumb) {
		return Photo{}, false
	}

	photo := Photo{
		ID:         dto.ID,
		Author:     author,
		CreatedAt:  dto.CreatedAt,
		Resolution: Resolution{Width: dto.Width, Height: dto.Height},
		Color:      dto.Color,
		URLs:       urls,
	}
	if dto.Description != nil {
		photo.Description = *dto.Description
	}
	return photo, true
}

// PhotosFromDTO maps every record that maps cleanly and drops the rest.
func PhotosFromDTO(list PhotoList) []Photo {
	photos := make([]Photo, 0, len(list))
	for _, dto := range list {
		if photo, ok := PhotoFromDTO(dto); ok {
			photos = append(photos, photo)
		}
	}
	return photos
}

// SearchResultFromDTO maps a search response.
func SearchResultFromDTO(dto SearchResultDTO) SearchResult {
	return SearchResult{
		Total:      dto.Total,
		TotalPages: dto.TotalPages,
		Photos:     PhotosFromDTO(dto.Results),
	}
}

func userFromDTO(dto UserDTO) (User, bool) {
	image := ProfileImage{
		Small:  dto.ProfileImage.Small,
		Medium: dto.ProfileImage.Medium,
		Large:  dto.ProfileImage.Large,
	}
	if !allAbsolute(image.Small, image.Medium, image.Large) {
		return User{}, false
	}

	user := User{
		ID:           dto.ID,
		Nickname:     dto.Username,
		FirstName:    dto.FirstName,
		ProfileImage: image,
	}
	if dto.LastName != nil {
		user.LastName = *dto.LastName
	}
	return user, true
}

func allAbsolute(urls ...string) bool {
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
	}
	return true
}
