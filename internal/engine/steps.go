package engine

// Step is an operation step code; rendering to text is left to the caller.
type Step string

var stepsByType = map[ChannelType][]Step{
	Bank:         {"BOOK_APPOINTMENT", "PREPARE_ID_AND_APPLICATION", "VISIT_BRANCH", "COLLECT_CASH"},
	Online:       {"OPEN_BANKING_APP", "SELECT_FX_SERVICE", "ENTER_AMOUNT_AND_CURRENCY", "CONFIRM_AND_PAY"},
	Airport:      {"GO_TO_AIRPORT_COUNTER", "SHOW_ID_AND_TICKET", "FILL_EXCHANGE_FORM", "COLLECT_CASH"},
	ExchangeShop: {"FIND_NEARBY_SHOP", "BRING_ID", "CONFIRM_RATE_AND_FEE", "COMPLETE_EXCHANGE"},
	ATM:          {"CHECK_ATM_NETWORK", "ENABLE_OVERSEAS_WITHDRAWAL", "FIND_PARTNER_ATM", "WITHDRAW_CASH"},
}

var purposeSteps = map[string]Step{
	PurposeStudy:       "PREPARE_STUDY_DOCUMENTS",
	PurposeImmigration: "PREPARE_VISA_DOCUMENTS",
}

// Steps lists the operation steps for a channel type. Study and immigration
// purposes add a document step right after the first one.
func Steps(t ChannelType, purpose string) []Step {
	base, ok := stepsByType[t]
	if !ok {
		base = stepsByType[Bank]
	}

	steps := make([]Step, 0, len(base)+1)
	steps = append(steps, base...)

	if extra, ok := purposeSteps[NormalizePurpose(purpose)]; ok {
		steps = append(steps[:1], append([]Step{extra}, steps[1:]...)...)
	}
	return steps
}
