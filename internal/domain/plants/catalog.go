package plants

// DefaultCatalog son las fichas de especie que se siembran en modo
// memoria (en Postgres el catálogo vive en care_profiles).
func DefaultCatalog() []CareProfile {
	return []CareProfile{
		{
			ID:               "monstera-deliciosa",
			ScientificName:   "Monstera deliciosa",
			CommonName:       "Monstera",
			BaseWateringDays: 7,
			Light:            "lumière indirecte",
			Humidity:         "moyenne",
			Toxicity:         "toxique pour les animaux",
		},
		{
			ID:               "ocimum-basilicum",
			ScientificName:   "Ocimum basilicum",
			CommonName:       "Basilic",
			BaseWateringDays: 2,
			Light:            "soleil direct",
			Humidity:         "élevée",
			Toxicity:         "comestible",
		},
		{
			ID:               "echinopsis-oxygona",
			ScientificName:   "Echinopsis oxygona",
			CommonName:       "Cactus oursin",
			BaseWateringDays: 14,
			Light:            "soleil direct, fort",
			Humidity:         "faible",
			Toxicity:         "non toxique",
		},
		{
			ID:               "sansevieria-trifasciata",
			ScientificName:   "Sansevieria trifasciata",
			CommonName:       "Langue de belle-mère",
			BaseWateringDays: 12,
			Light:            "ombre tolérée, faible lumière",
			Humidity:         "faible",
			Toxicity:         "toxique pour les animaux",
		},
		{
			ID:               "solanum-lycopersicum",
			ScientificName:   "Solanum lycopersicum",
			CommonName:       "Tomate",
			BaseWateringDays: 3,
			Light:            "soleil direct",
			Humidity:         "moyenne",
			Toxicity:         "feuillage toxique",
		},
	}
}
