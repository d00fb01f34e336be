// Package domain models Common Alerting Protocol (CAP) emergency alerts and
// their conversion into map-ready features.
//
// # Data Source
//
// Alerts originate from the MetService CAP feed, an RSS/Atom document that
// enumerates links to individual CAP 1.2 XML alert documents. The pipeline
// discovers alert links in the feed text, fetches each document, and
// transforms it into one or more output features for a tactical mapping
// client.
//
// # CAP Conventions
//
// Polygon mini-language (area/polygon, repeatable):
//
//	"lat,lon lat,lon lat,lon ..."  →  whitespace-separated comma pairs.
//	Note the lat,lon order; output coordinates are [lon, lat] per GeoJSON.
//	A ring is auto-closed when the first and last pair differ. Each polygon
//	string yields its own ring and its own output feature; multiple strings
//	are never merged into one multi-ring polygon.
//
// Circle mini-language (area/circle):
//
//	"lat,lon radius"  →  center pair plus a radius in kilometres.
//	The radius is validated but the output geometry is a bare Point at the
//	center. No circle buffering is rendered.
//
// Colour parameters (info/parameter, repeatable):
//
//	ColourCodeHex carries an explicit hex value and wins when present.
//	ColourCode carries a name (Red, Orange, Yellow, Green, Blue) mapped to a
//	fixed hex table. Alerts without either parameter get no style.
//
// Signature block (Signature/KeyInfo/X509Data/X509Certificate):
//
//	Base64 X.509 certificate text, possibly containing literal whitespace and
//	the &#13; carriage-return entity. Issuer, subject, and expiry are
//	extracted best-effort for display only; nothing is cryptographically
//	verified. A SHA-256 fingerprint over the cleaned base64 string serves as
//	a display identifier.
//
// # Required Fields
//
// A CAP document parses to a usable alert only when identifier, sender, and
// sent are all non-empty and an info block is present. Anything else is
// silently unusable; the per-alert isolation loop simply skips it.
package domain
