package domain

import (
	"encoding/xml"
	"strings"
)

// CAP 1.2 wire shapes. Names are unqualified so documents parse regardless of
// the urn:oasis:names:tc:emergency:cap:1.x namespace they declare.

type capAlert struct {
	XMLName    xml.Name  `xml:"alert"`
	Identifier string    `xml:"identifier"`
	Sender     string    `xml:"sender"`
	Sent       string    `xml:"sent"`
	Status     string    `xml:"status"`
	MsgType    string    `xml:"msgType"`
	Scope      string    `xml:"scope"`
	Info       []capInfo `xml:"info"`

	// Certificate is the base64 X.509 blob of an enveloped XML signature.
	Certificate string `xml:"Signature>KeyInfo>X509Data>X509Certificate"`
}

type capInfo struct {
	Category     string         `xml:"category"`
	Event        string         `xml:"event"`
	Urgency      string         `xml:"urgency"`
	Severity     string         `xml:"severity"`
	Certainty    string         `xml:"certainty"`
	SenderName   string         `xml:"senderName"`
	Headline     string         `xml:"headline"`
	Description  string         `xml:"description"`
	Instruction  string         `xml:"instruction"`
	ResponseType string         `xml:"responseType"`
	Onset        string         `xml:"onset"`
	Expires      string         `xml:"expires"`
	Web          string         `xml:"web"`
	Parameter    []capParameter `xml:"parameter"`
	Area         capArea        `xml:"area"`
}

type capParameter struct {
	ValueName string `xml:"valueName"`
	Value     string `xml:"value"`
}

type capArea struct {
	AreaDesc string   `xml:"areaDesc"`
	Polygon  []string `xml:"polygon"`
	Circle   string   `xml:"circle"`
}

// ParseAlert parses one CAP XML document into a normalized Alert. It returns
// nil, silently, when the document is unusable: no alert root, no info block,
// or any of identifier/sender/sent empty. Missing optional fields default to
// empty strings; they never fail the parse. Signature extraction is
// best-effort and substitutes fallback metadata rather than propagating.
func ParseAlert(doc string) *Alert {
	var raw capAlert
	if err := xml.Unmarshal([]byte(doc), &raw); err != nil {
		return nil
	}
	if len(raw.Info) == 0 {
		return nil
	}

	identifier := strings.TrimSpace(raw.Identifier)
	sender := strings.TrimSpace(raw.Sender)
	sent := strings.TrimSpace(raw.Sent)
	if identifier == "" || sender == "" || sent == "" {
		return nil
	}

	// CAP allows repeated info blocks (one per language); the feed only ever
	// carries one, so the first wins.
	info := raw.Info[0]

	alert := &Alert{
		Identifier: identifier,
		Sender:     sender,
		Sent:       sent,
		Status:     raw.Status,
		MsgType:    raw.MsgType,
		Scope:      raw.Scope,
		Info: Info{
			Category:     info.Category,
			Event:        info.Event,
			Urgency:      info.Urgency,
			Severity:     info.Severity,
			Certainty:    info.Certainty,
			SenderName:   info.SenderName,
			Headline:     info.Headline,
			Description:  info.Description,
			Instruction:  info.Instruction,
			ResponseType: info.ResponseType,
			Onset:        info.Onset,
			Expires:      info.Expires,
			Web:          info.Web,
			ColourCode:   resolveColour(info.Parameter),
			Area: Area{
				Desc:     info.Area.AreaDesc,
				Polygons: trimPolygons(info.Area.Polygon),
				Circle:   strings.TrimSpace(info.Area.Circle),
			},
		},
	}

	if cert := strings.TrimSpace(raw.Certificate); cert != "" {
		sig := ExtractSignature(cert)
		alert.Signature = &sig
	}

	return alert
}

// resolveColour scans info parameters for a colour. An explicit ColourCodeHex
// wins; otherwise a known ColourCode name is mapped; otherwise empty.
func resolveColour(params []capParameter) string {
	var named string
	for _, p := range params {
		switch p.ValueName {
		case "ColourCodeHex":
			if v := strings.TrimSpace(p.Value); v != "" {
				if strings.HasPrefix(v, "#") {
					return v
				}
				return "#" + v
			}
		case "ColourCode":
			if hex, ok := ColourForName(p.Value); ok && named == "" {
				named = hex
			}
		}
	}
	return named
}

// trimPolygons drops empty polygon elements, which some documents emit as
// self-closing tags.
func trimPolygons(polygons []string) []string {
	var out []string
	for _, p := range polygons {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
