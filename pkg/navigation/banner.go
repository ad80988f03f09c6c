package navigation

// BannerStyle is the visual weight of a banner.
type BannerStyle string

const (
	BannerError BannerStyle = "error"
	BannerInfo  BannerStyle = "info"
)

// Banner is a transient notification shown on top of existing content.
type Banner struct {
	Title    string
	Subtitle string
	Style    BannerStyle
}

// BannerPresenter shows banners.
type BannerPresenter interface {
	PresentBanner(b Banner)
}

// BannerFunc adapts a function to BannerPresenter.
type BannerFunc func(b Banner)

// PresentBanner calls f.
func (f BannerFunc) PresentBanner(b Banner) { f(b) }
