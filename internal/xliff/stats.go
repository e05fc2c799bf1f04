package xliff

// Stats summarises a parsed XLIFF file.
type Stats struct {
	TotalUnits     int
	PlaintextUnits int
	StyledUnits    int
	TotalChars     int
	AvgChars       float64
	SourceLanguage string
	TargetLanguage string
}

// Stats computes summary statistics over the document's units.
func (d *Document) Stats() Stats {
	s := Stats{
		SourceLanguage: d.SourceLanguage(),
		TargetLanguage: d.TargetLanguage(),
	}
	if s.TargetLanguage == "" {
		s.TargetLanguage = "not specified"
	}

	for _, u := range d.units {
		s.TotalUnits++
		if u.Styled() {
			s.StyledUnits++
		} else {
			s.PlaintextUnits++
		}
		s.TotalChars += len([]rune(u.TranslatableText()))
	}
	if s.TotalUnits > 0 {
		s.AvgChars = float64(s.TotalChars) / float64(s.TotalUnits)
	}
	return s
}
