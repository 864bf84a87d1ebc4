package ast

// Visitor provides an interface for traversing a document.
// Implement it to inspect or adjust nodes in place.
type Visitor interface {
	VisitBit(*Bit) error
	VisitResource(*Resource) error
	VisitBodyPart(*BodyPart) error
}

// Walk traverses the document and calls the visitor for each bit, each
// resource (including excess, key and avatar resources) and each body part.
// It returns the first error encountered.
func Walk(doc *Document, visitor Visitor) error {
	for _, bit := range doc.Bits {
		if err := WalkBit(bit, visitor); err != nil {
			return err
		}
	}
	return nil
}

// WalkBit traverses a single bit.
func WalkBit(bit *Bit, visitor Visitor) error {
	if err := visitor.VisitBit(bit); err != nil {
		return err
	}

	resources := []*Resource{bit.Resource}
	if bit.Partner != nil {
		resources = append(resources, bit.Partner.AvatarImage)
	}
	for i := range bit.Pairs {
		resources = append(resources, bit.Pairs[i].KeyAudio, bit.Pairs[i].KeyImage)
	}
	if bit.Parser != nil {
		resources = append(resources, bit.Parser.ExcessResources...)
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		if err := visitor.VisitResource(r); err != nil {
			return err
		}
	}

	if bit.Body != nil {
		for i := range bit.Body.Parts {
			if err := visitor.VisitBodyPart(&bit.Body.Parts[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
