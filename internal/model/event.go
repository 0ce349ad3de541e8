package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is a single recorded UFO sighting or encounter. Field names follow
// the public wire format; most descriptive attributes are opaque free text
// displayed verbatim.
type Event struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Date     string   `json:"date"` // "Month Day, Year" free text
	Time     string   `json:"time,omitempty"`

	Location  string `json:"location,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`

	CraftType            string `json:"craft_type,omitempty"`
	CraftSize            string `json:"craft_size,omitempty"`
	CraftBehavior        string `json:"craft_behavior,omitempty"`
	Color                string `json:"color,omitempty"`
	SoundOrNoise         string `json:"sound_or_noise,omitempty"`
	LightCharacteristics string `json:"light_characteristics,omitempty"`

	Witnesses  string `json:"witnesses,omitempty"`
	Eyewitness string `json:"eyewitness,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Weather    string `json:"weather,omitempty"`
	Photo      string `json:"photo,omitempty"`
	Video      string `json:"video,omitempty"`
	Radar      string `json:"radar,omitempty"`

	EntityType              string `json:"entity_type,omitempty"`
	CloseEncounterScale     string `json:"close_encounter_scale,omitempty"`
	TelepathicCommunication string `json:"telepathic_communication,omitempty"`

	PhysicalEffects     string `json:"physical_effects,omitempty"`
	TemporalDistortions string `json:"temporal_distortions,omitempty"`

	Credibility           string `json:"credibility,omitempty"` // numeric string 0-100
	Notoriety             string `json:"notoriety,omitempty"`   // numeric string 0-100
	GovernmentInvolvement string `json:"government_involvement,omitempty"`
	RecurringSightings    string `json:"recurring_sightings,omitempty"`
	ArtifactsOrRelics     string `json:"artifacts_or_relics,omitempty"`

	MediaLink       string `json:"media_link,omitempty"`
	DetailedSummary string `json:"detailed_summary,omitempty"`
	Symbols         string `json:"symbols,omitempty"`

	DeepDiveContent *DeepDiveContent `json:"deep_dive_content,omitempty"`

	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Score is the combined relevance score used for default ordering,
// credibility plus notoriety with parse failures counting as zero.
func (e *Event) Score() float64 {
	return parseScore(e.Credibility) + parseScore(e.Notoriety)
}

func parseScore(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// CompositeKey is the legacy "category-date-time" identity string. It is
// kept for wire compatibility with stored favorites from older clients;
// two events sharing category, date, and time collide, so internal
// identity uses the surrogate ID instead.
func (e *Event) CompositeKey() string {
	return fmt.Sprintf("%s-%s-%s", e.Category, e.Date, e.Time)
}

// When parses the event date. Events with unparsable dates stay visible in
// list responses but are excluded from date-positioned views.
func (e *Event) When() (time.Time, error) {
	return ParseDate(e.Date)
}

// Coordinates returns the decimal latitude/longitude. ok is false when
// either value is missing or unparsable; such events never reach the globe
// but remain timeline-visible.
func (e *Event) Coordinates() (lat, lon float64, ok bool) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(e.Latitude), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(e.Longitude), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// CraftTypeList splits the comma-separated craft_type field.
func (e *Event) CraftTypeList() []string { return splitMulti(e.CraftType) }

// EntityTypeList splits the comma-separated entity_type field.
func (e *Event) EntityTypeList() []string { return splitMulti(e.EntityType) }

func splitMulti(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasDeepDive reports whether any deep-dive content array is non-empty,
// which is what enables the deep-dive detail view.
func (e *Event) HasDeepDive() bool {
	d := e.DeepDiveContent
	if d == nil {
		return false
	}
	return len(d.Images) > 0 || len(d.Videos) > 0 || len(d.Reports) > 0 || len(d.NewsCoverage) > 0
}

// Validate checks the invariants enforced at ingestion. Unknown categories
// are rejected rather than rendered uncolored downstream.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !ValidCategory(e.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, e.Category)
	}
	if strings.TrimSpace(e.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

// DeepDiveContent maps the four fixed content-type keys to typed media
// items. Presence of any non-empty array enables the deep-dive view.
type DeepDiveContent struct {
	Images       []DeepDiveImage  `json:"Images,omitempty"`
	Videos       []DeepDiveVideo  `json:"Videos,omitempty"`
	Reports      []DeepDiveReport `json:"Reports,omitempty"`
	NewsCoverage []DeepDiveNews   `json:"News Coverage,omitempty"`
}

// DeepDiveImage is a slider-image group.
type DeepDiveImage struct {
	Type    string   `json:"type"` // "slider"
	Content []string `json:"content"`
}

// DeepDiveVideo wraps one or more embedded video links.
type DeepDiveVideo struct {
	Type    string `json:"type"` // "video"
	Content struct {
		Video []struct {
			VideoLink string `json:"video_link"`
		} `json:"video"`
	} `json:"content"`
}

// DeepDiveReport is a PDF/report attachment.
type DeepDiveReport struct {
	Type    string `json:"type"` // "report"
	Content struct {
		URL       string `json:"url"`
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail,omitempty"`
	} `json:"content"`
}

// DeepDiveNews is a news-coverage link.
type DeepDiveNews struct {
	Type    string `json:"type"` // "news"
	Content struct {
		URL    string `json:"url"`
		Title  string `json:"title"`
		Source string `json:"source,omitempty"`
	} `json:"content"`
}
