package booking

// Validate checks a booking request against the catalog and prices it.
// Checks run in a fixed order so that a missing date is reported before
// anything else.
func Validate(lookup FieldLookup, req Request) (Quote, error) {
	if req.Date == "" {
		return Quote{}, &ValidationError{Code: CodeMissingDate, FieldID: req.FieldID}
	}
	if req.TimeSlot == "" {
		return Quote{}, &ValidationError{Code: CodeMissingTimeSlot, FieldID: req.FieldID, Date: req.Date}
	}

	field, ok := lookup.Field(req.FieldID)
	if !ok {
		return Quote{}, &ValidationError{Code: CodeUnknownField, FieldID: req.FieldID}
	}
	if !field.IsAvailable {
		return Quote{}, &ValidationError{Code: CodeFieldUnavailable, FieldID: req.FieldID}
	}
	if !containsSlot(AvailableSlots(field, req.Date), req.TimeSlot) {
		return Quote{}, &ValidationError{
			Code:     CodeSlotNotAvailable,
			FieldID:  req.FieldID,
			Date:     req.Date,
			TimeSlot: req.TimeSlot,
		}
	}
	if req.Duration <= 0 {
		return Quote{}, &ValidationError{Code: CodeInvalidDuration, FieldID: req.FieldID, Duration: req.Duration}
	}

	return Quote{
		Request: req,
		Field:   field,
		Price:   ComputePrice(field, req.Duration),
	}, nil
}
