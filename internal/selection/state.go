package selection

// State is the ordered set of files queued for upload.
type State struct {
	limits Limits
	files  []SelectableFile
}

// NewState returns an empty selection bounded by limits.
func NewState(limits Limits) *State {
	return &State{limits: limits}
}

func (s *State) Files() []SelectableFile {
	out := make([]SelectableFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *State) Count() int {
	return len(s.files)
}

func (s *State) TotalBytes() int64 {
	return totalSize(s.files)
}

func (s *State) Limits() Limits {
	return s.limits
}

// Add evaluates incoming and appends the accepted files.
func (s *State) Add(incoming []SelectableFile) Result {
	res := s.limits.Evaluate(s, incoming)
	s.files = append(s.files, res.Accepted...)
	return res
}

// Remove drops the file at index. Indexes outside the selection are ignored.
func (s *State) Remove(index int) {
	if index < 0 || index >= len(s.files) {
		return
	}
	s.files = append(s.files[:index:index], s.files[index+1:]...)
}

func (s *State) Reset() {
	s.files = nil
}
