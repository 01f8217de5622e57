package screen

import "github.com/ingenzi/console-gateway/internal/resource"

// Schemas maps every registry to its screen schema. The screens themselves
// are all instances of the same controller; only this data varies.
func Schemas() map[string]Schema {
	return map[string]Schema{
		resource.Countries.Name: {
			Title: resource.Countries.Title,
			Fields: []Field{
				{Name: "name", Label: "Country Name", Kind: FieldText, Required: true},
				{Name: "active", Label: "Active", Kind: FieldSelect},
			},
			Filter: &FilterBar{TextField: "name"},
		},
		resource.LocationEntities.Name: {
			Title: resource.LocationEntities.Title,
			Fields: []Field{
				{Name: "name", Label: "Entity Name", Kind: FieldText, Required: true},
				{Name: "countryId", Label: "Country", Kind: FieldSelect, Required: true, OptionsFrom: resource.Countries.Name},
				{Name: "active", Label: "Active", Kind: FieldSelect},
			},
			Filter: &FilterBar{TextField: "name", SelectField: "countryId"},
		},
		resource.Modules.Name: {
			Title: resource.Modules.Title,
			Fields: []Field{
				{Name: "name", Label: "Module Name", Kind: FieldText, Required: true},
				{Name: "entityId", Label: "Entity", Kind: FieldSelect, Required: true, OptionsFrom: resource.LocationEntities.Name},
				{Name: "active", Label: "Active", Kind: FieldSelect},
			},
			Filter: &FilterBar{TextField: "name", SelectField: "entityId"},
		},
		resource.Sections.Name: {
			Title: resource.Sections.Title,
			Fields: []Field{
				{Name: "name", Label: "Section Name", Kind: FieldText, Required: true},
				{Name: "moduleId", Label: "Module", Kind: FieldSelect, Required: true, OptionsFrom: resource.Modules.Name},
				{Name: "sectionCategoryId", Label: "Category", Kind: FieldSelect, OptionsFrom: resource.SectionCategories.Name},
				{Name: "active", Label: "Active", Kind: FieldSelect},
			},
			Filter: &FilterBar{TextField: "name", SelectField: "moduleId"},
		},
		resource.Accounts.Name: {
			Title: resource.Accounts.Title,
			Fields: []Field{
				{Name: "firstName", Label: "First Name", Kind: FieldText, Required: true},
				{Name: "lastName", Label: "Last Name", Kind: FieldText, Required: true},
				{Name: "email", Label: "Email", Kind: FieldText, Required: true},
				{Name: "phone", Label: "Phone", Kind: FieldText},
				{Name: "categoryId", Label: "Category", Kind: FieldSelect, OptionsFrom: resource.AccountCategories.Name},
				{Name: "dateOfBirth", Label: "Date of Birth", Kind: FieldDate},
				{Name: "address", Label: "Address", Kind: FieldTextarea},
				{Name: "status", Label: "Status", Kind: FieldSelect},
			},
			Filter:  &FilterBar{TextField: "lastName"},
			Columns: []string{"firstName", "lastName", "email", "phone", "status"},
		},
		resource.Users.Name: {
			Title: resource.Users.Title,
			Fields: []Field{
				{Name: "username", Label: "Username", Kind: FieldText, Required: true},
				{Name: "email", Label: "Email", Kind: FieldText, Required: true},
				{Name: "roleId", Label: "Role", Kind: FieldSelect, Required: true, OptionsFrom: resource.Roles.Name},
				{Name: "accountId", Label: "Account", Kind: FieldSelect, OptionsFrom: resource.Accounts.Name, OptionLabel: "email"},
				{Name: "status", Label: "Status", Kind: FieldSelect},
			},
			Filter: &FilterBar{TextField: "username"},
		},
		resource.Roles.Name: {
			Title: resource.Roles.Title,
			Fields: []Field{
				{Name: "name", Label: "Role Name", Kind: FieldText, Required: true},
				{Name: "permissions", Label: "Permissions", Kind: FieldTextarea},
				{Name: "level", Label: "Level", Kind: FieldText, Required: true},
				{Name: "status", Label: "Status", Kind: FieldSelect},
			},
			Columns: []string{"name", "level", "status"},
			// Built-in platform roles carry isSystemRole and stay untouchable.
			LockField: "isSystemRole",
		},
		resource.AccountCategories.Name: {
			Title: resource.AccountCategories.Title,
			Fields: []Field{
				{Name: "name", Label: "Category Name", Kind: FieldText, Required: true},
			},
		},
		resource.DocStatuses.Name: {
			Title: resource.DocStatuses.Title,
			Fields: []Field{
				{Name: "name", Label: "Status Name", Kind: FieldText, Required: true},
			},
		},
		resource.SectionCategories.Name: {
			Title: resource.SectionCategories.Title,
			Fields: []Field{
				{Name: "name", Label: "Category Name", Kind: FieldText, Required: true},
			},
		},
		resource.NormeLoi.Name:          documentSchema(resource.NormeLoi.Title, Field{Name: "title", Label: "Title", Kind: FieldText, Required: true}, Field{Name: "referenceNumber", Label: "Reference", Kind: FieldText}),
		resource.CommAssetLand.Name:     documentSchema(resource.CommAssetLand.Title, Field{Name: "parcelNumber", Label: "Parcel Number", Kind: FieldText, Required: true}, Field{Name: "location", Label: "Location", Kind: FieldText}),
		resource.PermiConstruction.Name: documentSchema(resource.PermiConstruction.Title, Field{Name: "permitNumber", Label: "Permit Number", Kind: FieldText, Required: true}, Field{Name: "issuedDate", Label: "Issued", Kind: FieldDate}),
		resource.AccordConcession.Name:  documentSchema(resource.AccordConcession.Title, Field{Name: "agreementNumber", Label: "Agreement Number", Kind: FieldText, Required: true}, Field{Name: "partner", Label: "Partner", Kind: FieldText}),
		resource.Estate.Name:            documentSchema(resource.Estate.Title, Field{Name: "estateName", Label: "Estate Name", Kind: FieldText, Required: true}, Field{Name: "location", Label: "Location", Kind: FieldText}),
		resource.CertLicenses.Name:      documentSchema(resource.CertLicenses.Title, Field{Name: "certificateNumber", Label: "Certificate Number", Kind: FieldText, Required: true}, Field{Name: "expiryDate", Label: "Expires", Kind: FieldDate}),
		resource.CargoDamage.Name:       documentSchema(resource.CargoDamage.Title, Field{Name: "reportNumber", Label: "Report Number", Kind: FieldText, Required: true}, Field{Name: "incidentDate", Label: "Incident Date", Kind: FieldDate}),
		resource.ConcessContract.Name:   documentSchema(resource.ConcessContract.Title, Field{Name: "contractNumber", Label: "Contract Number", Kind: FieldText, Required: true}, Field{Name: "startDate", Label: "Start Date", Kind: FieldDate}),
		resource.EnviroCert.Name:        documentSchema(resource.EnviroCert.Title, Field{Name: "certificateNumber", Label: "Certificate Number", Kind: FieldText, Required: true}, Field{Name: "validUntil", Label: "Valid Until", Kind: FieldDate}),
	}
}

// documentSchema builds the shared shape of a document registry screen: the
// type-specific fields first, then the common references and the attachment.
func documentSchema(title string, specific ...Field) Schema {
	fields := make([]Field, 0, len(specific)+5)
	fields = append(fields, specific...)
	fields = append(fields,
		Field{Name: "description", Label: "Description", Kind: FieldTextarea},
		Field{Name: "doneById", Label: "Done By", Kind: FieldSelect, Required: true, OptionsFrom: resource.Accounts.Name, OptionLabel: "email"},
		Field{Name: "statusId", Label: "Status", Kind: FieldSelect, Required: true, OptionsFrom: resource.DocStatuses.Name},
		Field{Name: "sectionId", Label: "Section", Kind: FieldSelect, OptionsFrom: resource.Sections.Name},
		Field{Name: "document", Label: "Attachment", Kind: FieldFile, Required: true},
	)
	return Schema{
		Title:  title,
		Fields: fields,
		Filter: &FilterBar{TextField: specific[0].Name, SelectField: "statusId", DateRange: true},
	}
}
