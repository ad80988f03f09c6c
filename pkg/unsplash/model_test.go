package unsplash

import (
	"testing"
)

func validDTO(id string) PhotoDTO {
	desc := "A lake"
	return PhotoDTO{
		ID:     id,
		Width:  3000,
		Height: 2000,
		Color:  "#ffffff",
		User: UserDTO{
			ID:        "u1",
			Username:  "ansel",
			FirstName: "Ansel",
			ProfileImage: ProfileImageDTO{
				Small:  "https://images.unsplash.com/a?w=32",
				Medium: "https://images.unsplash.com/a?w=64",
				Large:  "https://images.unsplash.com/a?w=128",
			},
		},
		URLs: URLsDTO{
			Raw:     "https://images.unsplash.com/p",
			Full:    "https://images.unsplash.com/p?q=85",
			Regular: "https://images.unsplash.com/p?w=1080",
			Small:   "https://images.unsplash.com/p?w=400",
			Thumb:   "https://images.unsplash.com/p?w=200",
		},
		Description: &desc,
	}
}

func TestPhotoFromDTO(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PhotoDTO)
		wantOK bool
	}{
		{"valid", func(*PhotoDTO) {}, true},
		{"relative photo URL", func(d *PhotoDTO) { d.URLs.Thumb = "/p?w=200" }, false},
		{"empty avatar URL", func(d *PhotoDTO) { d.User.ProfileImage.Large = "" }, false},
		{"missing description", func(d *PhotoDTO) { d.Description = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := validDTO("p1")
			tt.mutate(&dto)
			photo, ok := PhotoFromDTO(dto)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && photo.Author.Nickname != "ansel" {
				t.Errorf("Nickname = %q", photo.Author.Nickname)
			}
		})
	}
}

func TestPhotosFromDTO_DropsInvalid(t *testing.T) {
	bad := validDTO("bad")
	bad.URLs.Raw = "not a url"

	photos := PhotosFromDTO(PhotoList{validDTO("a"), bad, validDTO("b")})
	if len(photos) != 2 {
		t.Fatalf("len = %d, want 2", len(photos))
	}
	if photos[1].ID != "b" {
		t.Errorf("photos[1].ID = %q", photos[1].ID)
	}
	if photos[0].Resolution.AspectRatio() <= 0.66 || photos[0].Resolution.AspectRatio() >= 0.67 {
		t.Errorf("AspectRatio = %v", photos[0].Resolution.AspectRatio())
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{Nickname: "nick", FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{User{Nickname: "nick", FirstName: "Ada"}, "Ada"},
		{User{Nickname: "nick"}, "nick"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
