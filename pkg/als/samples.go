package als

// Sample is an audio file referenced by a clip.
type Sample struct {
	// Path is the path relative to the project, or the absolute path when no
	// relative path is stored.
	Path     string
	Relative bool
}

// Samples returns the distinct audio files referenced by clips on the track,
// in document order.
func (t *Track) Samples() []Sample {
	var (
		samples []Sample
		seen    = map[string]bool{}
	)

	for _, ref := range t.el.FindElements(".//SampleRef/FileRef") {
		s := Sample{Path: valueOf(ref.SelectElement("RelativePath")), Relative: true}
		if s.Path == "" {
			s = Sample{Path: valueOf(ref.SelectElement("Path"))}
		}
		if s.Path == "" || seen[s.Path] {
			continue
		}

		seen[s.Path] = true
		samples = append(samples, s)
	}

	return samples
}
