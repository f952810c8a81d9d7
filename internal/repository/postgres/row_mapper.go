package postgres

import "conferencegateway/internal/domain"

// SessionRowMapper converts a Row into a Session.
type SessionRowMapper struct {
	converter ColumnConverter
}

// NewSessionRowMapper returns a SessionRowMapper using converter for type coercion.
func NewSessionRowMapper(converter ColumnConverter) *SessionRowMapper {
	return &SessionRowMapper{converter: converter}
}

// Map reads the <prefix>_<column> labels of row into a new Session.
func (m *SessionRowMapper) Map(row Row, prefix string) (*domain.Session, error) {
	var err error
	s := &domain.Session{}
	if s.ID, err = m.converter.Int64(row, prefix+"_id"); err != nil {
		return nil, err
	}
	if s.Title, err = m.converter.String(row, prefix+"_title"); err != nil {
		return nil, err
	}
	if s.Description, err = m.converter.String(row, prefix+"_description"); err != nil {
		return nil, err
	}
	if s.StartDateTime, err = m.converter.Time(row, prefix+"_start_date_time"); err != nil {
		return nil, err
	}
	if s.EndDateTime, err = m.converter.Time(row, prefix+"_end_date_time"); err != nil {
		return nil, err
	}
	return s, nil
}

// SpeakerRowMapper converts a Row into a Speaker. Sessions are left empty;
// the repository fills them in.
type SpeakerRowMapper struct {
	converter ColumnConverter
}

// NewSpeakerRowMapper returns a SpeakerRowMapper using converter for type coercion.
func NewSpeakerRowMapper(converter ColumnConverter) *SpeakerRowMapper {
	return &SpeakerRowMapper{converter: converter}
}

// Map reads the <prefix>_<column> labels of row into a new Speaker.
func (m *SpeakerRowMapper) Map(row Row, prefix string) (*domain.Speaker, error) {
	var err error
	s := &domain.Speaker{Sessions: []*domain.Session{}}
	if s.ID, err = m.converter.Int64(row, prefix+"_id"); err != nil {
		return nil, err
	}
	fields := []struct {
		column string
		dest   *string
	}{
		{"first_name", &s.FirstName},
		{"last_name", &s.LastName},
		{"email", &s.Email},
		{"twitter", &s.Twitter},
		{"bio", &s.Bio},
	}
	for _, f := range fields {
		if *f.dest, err = m.converter.String(row, prefix+"_"+f.column); err != nil {
			return nil, err
		}
	}
	return s, nil
}
