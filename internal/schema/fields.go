package schema

// Field is a logical column name. The string value doubles as the canonical
// header text written when a missing column is created.
type Field string

const (
	FieldID           Field = "Ticket ID"
	FieldDepartment   Field = "Department"
	FieldDescription  Field = "Description"
	FieldStatus       Field = "Status"
	FieldReportedBy   Field = "Reported By"
	FieldResolvedBy   Field = "Resolved By"
	FieldRemark       Field = "Remark"
	FieldHistory      Field = "History"
	FieldTargetDate   Field = "Target Date"
	FieldResolvedDate Field = "Resolved Date"
	FieldReopenedDate Field = "Reopened Date"
	FieldRating       Field = "Rating"
	FieldUnit         Field = "Unit"
	FieldCreatedAt    Field = "Created At"

	FieldDate        Field = "Date"
	FieldAction      Field = "Action"
	FieldPerformedBy Field = "Performed By"
	FieldOldStatus   Field = "Old Status"
	FieldNewStatus   Field = "New Status"

	FieldName     Field = "Name"
	FieldMobile   Field = "Mobile"
	FieldRole     Field = "Role"
	FieldActive   Field = "Active"
	FieldPassword Field = "Password"
	FieldLevel    Field = "Level"
)

// aliases maps each logical field to the normalized header spellings it
// accepts. Stores predating this service use many of these.
var aliases = map[Field][]string{
	FieldID:           {"ticketid", "tid", "ticketno", "refno", "serialno", "sno", "id"},
	FieldDepartment:   {"department", "dept"},
	FieldDescription:  {"description", "desc", "issue", "complaint"},
	FieldStatus:       {"status"},
	FieldReportedBy:   {"reportedby", "reporter", "raisedby"},
	FieldResolvedBy:   {"resolvedby", "resolver", "attendedby"},
	FieldRemark:       {"remark", "remarks", "note", "comment"},
	FieldHistory:      {"history", "log"},
	FieldTargetDate:   {"targetdate", "extensiondate", "duedate"},
	FieldResolvedDate: {"resolveddate", "closeddate", "completiondate"},
	FieldReopenedDate: {"reopeneddate", "reopendate"},
	FieldRating:       {"rating", "stars", "feedback"},
	FieldUnit:         {"unit", "facility", "block"},
	FieldCreatedAt:    {"createdat", "createddate", "reporteddate"},
	FieldDate:         {"date", "timestamp"},
	FieldAction:       {"action", "event"},
	FieldPerformedBy:  {"performedby", "actionby", "doneby"},
	FieldOldStatus:    {"oldstatus", "fromstatus"},
	FieldNewStatus:    {"newstatus", "tostatus"},
	FieldName:         {"name", "contactname", "staffname"},
	FieldRole:         {"role"},
	FieldActive:       {"active", "isactive", "enabled"},
	FieldPassword:     {"password", "passwordhash"},
	FieldLevel:        {"level", "tier"},
}

// containsRules match headers by substring after normalization, for fields
// whose spellings vary too much for an alias list.
var containsRules = map[Field][]string{
	FieldMobile: {"mobile", "phone"},
}
