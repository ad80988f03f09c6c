package unsplash

import (
	"encoding/json"
	"testing"

	"github.com/Sternrassler/unsplash-client/internal/testutil"
)

func TestPhotoList_DropsMalformedRecords(t *testing.T) {
	body := `[` + testutil.PhotoJSON("a") + `,
		{"id": 42},
		{"width": 10},
		` + testutil.PhotoJSON("b") + `]`

	var list PhotoList
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("IDs = %s, %s", list[0].ID, list[1].ID)
	}
}

func TestPhotoList_NotAnArray(t *testing.T) {
	var list PhotoList
	if err := json.Unmarshal([]byte(`{"errors":["nope"]}`), &list); err == nil {
		t.Error("Unmarshal() should fail for a non-array body")
	}
}

func TestPhotoDTO_Fields(t *testing.T) {
	var dto PhotoDTO
	if err := json.Unmarshal([]byte(testutil.PhotoJSON("xyz")), &dto); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if dto.User.Username != "author_xyz" {
		t.Errorf("Username = %q", dto.User.Username)
	}
	if dto.User.LastName != nil {
		t.Error("LastName should be nil for a JSON null")
	}
	if dto.CreatedAt.Year() != 2024 {
		t.Errorf("CreatedAt = %v", dto.CreatedAt)
	}
	if dto.URLs.Regular == "" || dto.User.ProfileImage.Small == "" {
		t.Error("nested URLs not decoded")
	}
}

func TestSearchResultDTO(t *testing.T) {
	var dto SearchResultDTO
	if err := json.Unmarshal([]byte(testutil.SearchJSON(1234, "a")), &dto); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if dto.Total != 1234 || len(dto.Results) != 1 {
		t.Errorf("dto = %+v", dto)
	}
}
