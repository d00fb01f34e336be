package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// Fixed fallbacks for signature fields that cannot be extracted. The feed's
// certificates are issued to the national weather authority, so the
// placeholders name it rather than leaving display fields blank.
const (
	fallbackIssuer      = "MetService"
	fallbackSubject     = "Meteorological Service of New Zealand Limited"
	fallbackValidUntil  = "2030-01-01"
	fallbackFingerprint = "Unknown"
)

var (
	// issuerRe pulls the common name out of an X.500 distinguished name
	// embedded in the raw certificate text.
	issuerRe = regexp.MustCompile(`CN=([^,]+)`)

	// subjectRe pulls the organisation out of the distinguished name.
	subjectRe = regexp.MustCompile(`O=([^,]+)`)

	// utcTimeRe matches ASN.1 UTCTime values (YYMMDDHHMMSSZ). Certificates
	// carry two: not-before, then not-after.
	utcTimeRe = regexp.MustCompile(`(\d{2})(\d{2})(\d{2})\d{2}\d{2}\d{2}Z`)
)

// ExtractSignature derives display-only certificate metadata from the base64
// X.509 blob embedded in an alert's signature block. Extraction is
// best-effort per field: a missing CN or O pattern substitutes its fixed
// fallback without discarding the other fields, and an undecodable blob
// yields the wholesale fallback record. It never fails the alert.
func ExtractSignature(certB64 string) Signature {
	cleaned := cleanCertText(certB64)

	der, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil || len(der) == 0 {
		return Signature{
			Issuer:      fallbackIssuer,
			Subject:     fallbackSubject,
			ValidUntil:  fallbackValidUntil,
			Fingerprint: fallbackFingerprint,
		}
	}

	// The fingerprint hashes the cleaned base64 string bytes, not the DER,
	// so it matches what other consumers of the feed display.
	sum := sha256.Sum256([]byte(cleaned))

	certText := string(der)
	sig := Signature{
		Issuer:      fallbackIssuer,
		Subject:     fallbackSubject,
		ValidUntil:  fallbackValidUntil,
		Fingerprint: formatFingerprint(sum[:]),
	}
	if m := issuerRe.FindStringSubmatch(certText); m != nil {
		sig.Issuer = strings.TrimSpace(m[1])
	}
	if m := subjectRe.FindStringSubmatch(certText); m != nil {
		sig.Subject = strings.TrimSpace(m[1])
	}
	if until, ok := extractValidUntil(certText); ok {
		sig.ValidUntil = until
	}

	return sig
}

// cleanCertText strips whitespace and the HTML carriage-return entity that
// feed documents embed inside the certificate element.
func cleanCertText(s string) string {
	s = strings.ReplaceAll(s, "&#13;", "")
	return strings.Join(strings.Fields(s), "")
}

// extractValidUntil finds the certificate expiry: the second UTCTime in the
// raw certificate text (the first is the issue date). Rendered as 20YY-MM-DD.
func extractValidUntil(certText string) (string, bool) {
	matches := utcTimeRe.FindAllStringSubmatch(certText, 2)
	if len(matches) < 2 {
		return "", false
	}
	m := matches[1]
	return fmt.Sprintf("20%s-%s-%s", m[1], m[2], m[3]), true
}

// formatFingerprint renders hash bytes as colon-separated uppercase hex
// byte pairs, e.g. "AB:12:...".
func formatFingerprint(sum []byte) string {
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
