package email

// Subjects stay in PT-BR to match the audience of the tenant teams.
const (
	subjectHandoffAlertFmt  = "Atendimento humano solicitado - %s"
	subjectLeadQualifiedFmt = "Novo lead %s (score %d) - %s"
)
