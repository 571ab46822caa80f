package models

// Field identifies one extractable account attribute. Every field is
// optional; absence of one never invalidates the others.
type Field string

const (
	FieldBilledBy      Field = "billed_by"
	FieldPaymentMethod Field = "payment_method"
	FieldCountry       Field = "country"
	FieldMembership    Field = "membership_status"
	FieldPlanStatus    Field = "plan_status"
	FieldPlanName      Field = "plan_name"
	FieldCanChangePlan Field = "can_change_plan"
	FieldNextPayment   Field = "next_payment"
	FieldSignupDate    Field = "signup_date"
	FieldExtraSlots    Field = "extra_member_slots"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldName          Field = "name"
	FieldLanguage      Field = "language"
)

// AccountInfo holds the best-effort account attributes extracted from a
// validated account page body.
type AccountInfo struct {
	Fields map[Field]string `json:"fields"`
}

// Get returns the field value and whether it was extracted.
func (a *AccountInfo) Get(f Field) (string, bool) {
	v, ok := a.Fields[f]
	return v, ok
}

// Set stores a field value; empty values are dropped.
func (a *AccountInfo) Set(f Field, v string) {
	if v == "" {
		return
	}
	if a.Fields == nil {
		a.Fields = make(map[Field]string)
	}
	a.Fields[f] = v
}

// reportOrder fixes the human-report line order. A line is included only
// when its field was extracted.
var reportOrder = []struct {
	field Field
	label string
}{
	{FieldBilledBy, "Billed by"},
	{FieldPaymentMethod, "Using"},
	{FieldCountry, "Country"},
	{FieldMembership, "Membership"},
	{FieldPlanStatus, "Plan status"},
	{FieldPlanName, "Plan"},
	{FieldCanChangePlan, "Can change plan"},
	{FieldNextPayment, "Next payment"},
	{FieldSignupDate, "Member since"},
	{FieldExtraSlots, "Extra member slots"},
	{FieldEmail, "Email"},
	{FieldPhone, "Phone"},
	{FieldName, "Name"},
	{FieldLanguage, "Language"},
}

// Report renders the extracted fields as ordered "label: value" lines.
func (a *AccountInfo) Report() []string {
	lines := make([]string, 0, len(a.Fields))
	for _, row := range reportOrder {
		if v, ok := a.Fields[row.field]; ok {
			lines = append(lines, row.label+": "+v)
		}
	}
	return lines
}
