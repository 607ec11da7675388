package docx

import "encoding/xml"

// XML namespaces used in DOCX files
const (
	nsW    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Relationship types that point at text-bearing parts.
const (
	relHeader    = nsRels + "/header"
	relFooter    = nsRels + "/footer"
	relFootnotes = nsRels + "/footnotes"
	relEndnotes  = nsRels + "/endnotes"
)

// PartKind identifies the role of a text-bearing part in the package.
type PartKind string

const (
	KindBody      PartKind = "body"
	KindHeader    PartKind = "header"
	KindFooter    PartKind = "footer"
	KindFootnotes PartKind = "footnotes"
	KindEndnotes  PartKind = "endnotes"
)

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// corePropertiesXML represents docProps/core.xml (Dublin Core metadata)
type corePropertiesXML struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Subject  string   `xml:"subject"`
	Creator  string   `xml:"creator"`
	Keywords string   `xml:"keywords"`
}

// Metadata holds the document properties a template registry cares about.
type Metadata struct {
	Title    string
	Subject  string
	Author   string
	Keywords []string
}

// relationshipKind maps a relationship type onto a part kind.
func relationshipKind(relType string) (PartKind, bool) {
	switch relType {
	case relHeader:
		return KindHeader, true
	case relFooter:
		return KindFooter, true
	case relFootnotes:
		return KindFootnotes, true
	case relEndnotes:
		return KindEndnotes, true
	}
	return "", false
}
