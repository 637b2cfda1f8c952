package settings

// HowToPlayLink is the singleton row (id=1) pointing players at the rules
// page.
type HowToPlayLink struct {
	URL string
}

// PromoBanner is the singleton row (id=1) for the promotional banner shown in
// the game client. ImageSrc is a filename under the upload directory or an
// external URL.
type PromoBanner struct {
	ImageSrc string
	LinkURL  string
}
