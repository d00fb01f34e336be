package domain

// Alert is the normalized representation of one CAP document.
// All timestamp fields stay as the raw CAP strings until feature assembly
// renders them.
type Alert struct {
	Identifier string `json:"identifier"`
	Sender     string `json:"sender"`
	Sent       string `json:"sent"`
	Status     string `json:"status"`
	MsgType    string `json:"msg_type"`
	Scope      string `json:"scope"`

	Info Info `json:"info"`

	// Signature is nil when the document carries no signature block.
	Signature *Signature `json:"signature,omitempty"`
}

// Info holds the single info block of an alert.
type Info struct {
	Category     string `json:"category"`
	Event        string `json:"event"`
	Urgency      string `json:"urgency"`
	Severity     string `json:"severity"`
	Certainty    string `json:"certainty"`
	SenderName   string `json:"sender_name,omitempty"`
	Headline     string `json:"headline,omitempty"`
	Description  string `json:"description,omitempty"`
	Instruction  string `json:"instruction,omitempty"`
	ResponseType string `json:"response_type,omitempty"`
	Onset        string `json:"onset,omitempty"`
	Expires      string `json:"expires,omitempty"`
	Web          string `json:"web,omitempty"`

	// ColourCode is the resolved hex colour ("#FF0000"), empty when the
	// alert carries neither a ColourCodeHex nor a known ColourCode parameter.
	ColourCode string `json:"colour_code,omitempty"`

	Area Area `json:"area"`
}

// Area describes the geographic scope of an alert. CAP allows the polygon
// element to repeat; each string is an independent ring.
type Area struct {
	Desc     string   `json:"desc"`
	Polygons []string `json:"polygons,omitempty"`
	Circle   string   `json:"circle,omitempty"`
}

// Signature is display-only certificate metadata extracted from the alert's
// XML signature block. Fields fall back to fixed placeholders when extraction
// fails; see ExtractSignature.
type Signature struct {
	Issuer      string `json:"issuer"`
	Subject     string `json:"subject"`
	ValidUntil  string `json:"valid_until"`
	Fingerprint string `json:"fingerprint"`
}
