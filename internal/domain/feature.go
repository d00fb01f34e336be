package domain

import (
	"fmt"
	"strings"
	"time"
)

// markerType is the fixed classification tag the mapping client uses to group
// feed-sourced alert markers.
const markerType = "a-u-G"

// homePosition is the fallback coordinate for alerts with no usable area:
// the feed's home region (Wellington).
var homePosition = []float64{174.7772, -41.2889}

// feedLocation is the feed's local timezone, used when rendering onset and
// expiry times inside remarks.
var feedLocation = loadFeedLocation()

func loadFeedLocation() *time.Location {
	loc, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		// No tzdata on the host; NZST keeps remarks readable.
		return time.FixedZone("NZST", 12*60*60)
	}
	return loc
}

// FeatureCollection is the submission unit: every feature assembled during
// one pipeline cycle.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection creates an empty collection.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection"}
}

// Feature is one output marker or polygon for the mapping client.
type Feature struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Properties is the feature's display bag.
type Properties struct {
	Name       string   `json:"name"`
	MarkerType string   `json:"type"`
	Time       string   `json:"time"`
	Start      string   `json:"start"`
	Stale      string   `json:"stale,omitempty"`
	Icon       string   `json:"icon,omitempty"`
	Metadata   Metadata `json:"metadata"`
	Remarks    string   `json:"remarks"`
	Links      []Link   `json:"links,omitempty"`
	Style      *Style   `json:"style,omitempty"`

	// Archived is always false at creation; archival is the submission
	// sink's concern, never this pipeline's.
	Archived bool `json:"archived"`
}

// Metadata mirrors the source alert's fields for client-side inspection.
type Metadata struct {
	Identifier  string `json:"identifier"`
	Sender      string `json:"sender"`
	Sent        string `json:"sent"`
	Status      string `json:"status"`
	MsgType     string `json:"msg_type"`
	Scope       string `json:"scope"`
	Category    string `json:"category"`
	Event       string `json:"event"`
	SenderName  string `json:"sender_name,omitempty"`
	Headline    string `json:"headline,omitempty"`
	AreaDesc    string `json:"area_desc,omitempty"`
	Web         string `json:"web,omitempty"`
	ProcessedAt string `json:"processed_at"`
}

// Link is a hyperlink attached to a feature.
type Link struct {
	URL string `json:"url"`
}

// Style carries simplestyle stroke/fill values for polygon features.
type Style struct {
	Stroke        string  `json:"stroke"`
	StrokeOpacity float64 `json:"stroke-opacity"`
	StrokeWidth   float64 `json:"stroke-width"`
	Fill          string  `json:"fill"`
	FillOpacity   float64 `json:"fill-opacity"`
}

const (
	strokeOpacity = 0.5
	fillOpacity   = 0.4
	strokeWidth   = 3.0
)

// BuildFeatures assembles the output features for one alert.
//
// Polygon areas fan out: one Polygon feature per polygon string plus a paired
// "-center" Point feature carrying the icon (polygons themselves carry none).
// An alert with polygons never also gets a circle or fallback point. Without
// polygons, a parseable circle yields a single Point at its center, and
// anything else yields a single Point at the feed's home region.
//
// Malformed sent/onset/expires timestamps and invalid polygon strings are
// returned as errors; the caller skips the whole alert with a warning rather
// than emitting partial output.
func BuildFeatures(alert *Alert) ([]Feature, error) {
	stamps, err := renderTimestamps(alert)
	if err != nil {
		return nil, err
	}

	base := Properties{
		Name:       displayName(alert),
		MarkerType: markerType,
		Time:       stamps.time,
		Start:      stamps.start,
		Stale:      stamps.stale,
		Metadata:   buildMetadata(alert),
		Remarks:    buildRemarks(alert, stamps),
	}
	if alert.Info.Web != "" {
		base.Links = []Link{{URL: alert.Info.Web}}
	}
	icon := IconForAlert(alert.Info.Category, alert.Info.Event)

	if len(alert.Info.Area.Polygons) > 0 {
		return buildPolygonFeatures(alert, base, icon)
	}

	point := homePosition
	if circle := ParseCircleString(alert.Info.Area.Circle); circle != nil {
		point = circle.Center
	}
	props := base
	props.Icon = icon
	return []Feature{{
		ID:         alert.Identifier,
		Type:       "Feature",
		Geometry:   Geometry{Type: GeometryPoint, Point: point},
		Properties: props,
	}}, nil
}

// buildPolygonFeatures emits a Polygon feature and its paired center Point
// for every polygon string. Any invalid polygon string abandons the whole
// alert: partial fan-out would leave the operator looking at half an area.
func buildPolygonFeatures(alert *Alert, base Properties, icon string) ([]Feature, error) {
	polygons := alert.Info.Area.Polygons

	var style *Style
	if colour := alert.Info.ColourCode; colour != "" {
		style = &Style{
			Stroke:        colour,
			StrokeOpacity: strokeOpacity,
			StrokeWidth:   strokeWidth,
			Fill:          colour,
			FillOpacity:   fillOpacity,
		}
	}

	features := make([]Feature, 0, 2*len(polygons))
	for i, polygon := range polygons {
		rings, err := ParsePolygonString(polygon)
		if err != nil {
			return nil, fmt.Errorf("alert %s polygon %d: %w", alert.Identifier, i, err)
		}

		id := alert.Identifier
		if len(polygons) > 1 {
			id = fmt.Sprintf("%s-%d", alert.Identifier, i)
		}

		polyProps := base
		polyProps.Style = style
		features = append(features, Feature{
			ID:         id,
			Type:       "Feature",
			Geometry:   Geometry{Type: GeometryPolygon, Rings: rings},
			Properties: polyProps,
		})

		centerProps := base
		centerProps.Icon = icon
		features = append(features, Feature{
			ID:         id + "-center",
			Type:       "Feature",
			Geometry:   Geometry{Type: GeometryPoint, Point: Centroid(rings[0])},
			Properties: centerProps,
		})
	}

	return features, nil
}

// timestamps holds the rendered time/start/stale strings plus the parsed
// onset/expires for locale formatting in remarks.
type timestamps struct {
	time    string
	start   string
	stale   string
	onset   time.Time
	expires time.Time
}

// renderTimestamps normalizes the alert's CAP timestamps to UTC RFC 3339.
// time = sent, start = onset|sent, stale = expires|omitted. Malformed date
// strings are a defect to surface, not swallow.
func renderTimestamps(alert *Alert) (timestamps, error) {
	sent, err := parseCAPTime(alert.Sent)
	if err != nil {
		return timestamps{}, fmt.Errorf("alert %s: parse sent: %w", alert.Identifier, err)
	}

	out := timestamps{
		time:  formatUTC(sent),
		start: formatUTC(sent),
	}

	if alert.Info.Onset != "" {
		onset, err := parseCAPTime(alert.Info.Onset)
		if err != nil {
			return timestamps{}, fmt.Errorf("alert %s: parse onset: %w", alert.Identifier, err)
		}
		out.onset = onset
		out.start = formatUTC(onset)
	}
	if alert.Info.Expires != "" {
		expires, err := parseCAPTime(alert.Info.Expires)
		if err != nil {
			return timestamps{}, fmt.Errorf("alert %s: parse expires: %w", alert.Identifier, err)
		}
		out.expires = expires
		out.stale = formatUTC(expires)
	}

	return out, nil
}

func parseCAPTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(value))
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatLocal(t time.Time) string {
	return t.In(feedLocation).Format("Mon, 02 Jan 2006 3:04 PM")
}

func displayName(alert *Alert) string {
	if alert.Info.Headline != "" {
		return alert.Info.Headline
	}
	if alert.Info.Event != "" {
		return EventLabel(alert.Info.Event)
	}
	return alert.Identifier
}

func buildMetadata(alert *Alert) Metadata {
	return Metadata{
		Identifier:  alert.Identifier,
		Sender:      alert.Sender,
		Sent:        alert.Sent,
		Status:      alert.Status,
		MsgType:     alert.MsgType,
		Scope:       alert.Scope,
		Category:    alert.Info.Category,
		Event:       alert.Info.Event,
		SenderName:  alert.Info.SenderName,
		Headline:    alert.Info.Headline,
		AreaDesc:    alert.Info.Area.Desc,
		Web:         alert.Info.Web,
		ProcessedAt: clock.Now().UTC().Format(time.RFC3339),
	}
}

// buildRemarks assembles the multi-line remarks block. Blank lines are
// filtered before joining so optional fields never leave gaps.
func buildRemarks(alert *Alert, stamps timestamps) string {
	info := alert.Info

	lines := []string{
		info.Description,
		info.Instruction,
	}
	if info.Category != "" {
		lines = append(lines, "Category: "+CategoryLabel(info.Category))
	}
	if info.Event != "" {
		lines = append(lines, "Event: "+EventLabel(info.Event))
	}
	lines = append(lines,
		"Urgency: "+orUnknown(info.Urgency),
		"Severity: "+orUnknown(info.Severity),
		"Certainty: "+orUnknown(info.Certainty),
		"Response: "+orUnknown(info.ResponseType),
	)
	if !stamps.onset.IsZero() {
		lines = append(lines, "Onset: "+formatLocal(stamps.onset))
	}
	if !stamps.expires.IsZero() {
		lines = append(lines, "Expires: "+formatLocal(stamps.expires))
	}

	if sig := alert.Signature; sig != nil {
		lines = append(lines,
			"Signed by: "+sig.Subject,
			"Issuer: "+sig.Issuer,
			"Certificate valid until: "+sig.ValidUntil,
			"Fingerprint: "+sig.Fingerprint,
		)
	}

	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
