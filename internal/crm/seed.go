package crm

// SeedProfiles is the embedded CRM reference data used when no database
// is configured. The records mirror the pilot book of business.
func SeedProfiles() []CustomerProfile {
	return []CustomerProfile{
		{
			Identifier: "A100",
			Identity:   Identity{Name: "M. Abdlbasset elhamrit", Segment: "VIP Gold"},
			Psychology: Psychology{Patience: "FAIBLE", TonePreference: "Direct et Efficace"},
			History:    History{Claims: 0, Notes: "Client depuis 10 ans."},
			Alert:      Alert{Type: "OPPORTUNITÉ", Message: "Contrat auto expire dans 3 jours."},
			Strategy:   "Ne perds pas de temps. Règle le problème vite et propose le renouvellement à la fin.",
		},
		{
			Identifier: "B200",
			Identity:   Identity{Name: "Mme. Samira Idrissi", Segment: "Risque Élevé"},
			Psychology: Psychology{Patience: "MOYENNE", TonePreference: "Formel et Prudent"},
			History:    History{Claims: 4, Notes: "Dernier sinistre: fraude suspectée 2023."},
			Alert:      Alert{Type: "WARNING", Message: "Surveillance Fraude active."},
			Strategy:   "Sois très poli mais enregistre tout. Ne promets AUCUN remboursement sans validation chef.",
		},
		{
			Identifier: "C300",
			Identity:   Identity{Name: "M. Rachid Tazi", Segment: "Standard"},
			Psychology: Psychology{Patience: "ÉLEVÉE", TonePreference: "Amical et Pédagogue"},
			History:    History{Claims: 1, Notes: "Dossier en cours."},
			Alert:      Alert{Type: "INFO", Message: "Dossier bris de glace ouvert hier."},
			Strategy:   "Rassure le client sur son dossier en cours. Explique bien les étapes.",
		},
	}
}
