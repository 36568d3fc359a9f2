package knowledge

import "github.com/openclaims/heron/internal/domain"

// catalog returns the built-in disease reference data: 19 diseases across
// the major treatment categories. Costs are in the same currency unit as
// claim amounts.
func catalog() []domain.DiseaseProfile {
	return []domain.DiseaseProfile{
		// Infectious
		{
			Key: "dengue_fever", Name: "Dengue Fever", Category: "infectious",
			MinDays: 3, MaxDays: 7,
			MinCost: 15000, MaxCost: 50000, MaxReasonable: 80000,
			RoomType:              "general",
			RequiredTreatments:    []string{"iv_fluids", "blood_tests", "platelet_monitoring"},
			UnnecessaryTreatments: []string{"antibiotics", "mri", "ct_scan"},
			CommonMedications:     []string{"paracetamol", "iv_fluids", "antipyretics", "acetaminophen"},
			RedFlags:              []string{"antibiotics_prescribed", "extended_stay", "icu_admission"},
		},
		{
			Key: "malaria", Name: "Malaria", Category: "infectious",
			MinDays: 3, MaxDays: 7,
			MinCost: 12000, MaxCost: 40000, MaxReasonable: 60000,
			RoomType:              "general",
			RequiredTreatments:    []string{"antimalarial_drugs", "blood_tests"},
			UnnecessaryTreatments: []string{"surgery", "mri", "ct_scan"},
			CommonMedications: []string{
				"chloroquine", "artemisinin", "primaquine", "hydroxychloroquine",
				"antimalarial_drugs", "antipyretics", "paracetamol", "dolo",
			},
			RedFlags: []string{"surgery_billed", "extended_stay"},
		},
		{
			Key: "typhoid", Name: "Typhoid Fever", Category: "infectious",
			MinDays: 5, MaxDays: 10,
			MinCost: 20000, MaxCost: 60000, MaxReasonable: 90000,
			RoomType:              "general",
			RequiredTreatments:    []string{"antibiotics", "blood_culture"},
			UnnecessaryTreatments: []string{"surgery", "ct_scan"},
			CommonMedications:     []string{"ciprofloxacin", "ceftriaxone", "antibiotics"},
			RedFlags:              []string{"surgery_billed", "no_antibiotics"},
		},

		// Cardiac
		{
			Key: "heart_attack", Name: "Heart Attack (Myocardial Infarction)", Category: "cardiac",
			MinDays: 5, MaxDays: 14,
			MinCost: 150000, MaxCost: 500000, MaxReasonable: 600000,
			RoomType: "icu", ICURequired: true, SurgeryRequired: true,
			RequiredTreatments:    []string{"ecg", "angiography", "troponin_test"},
			UnnecessaryTreatments: []string{},
			CommonMedications:     []string{"aspirin", "clopidogrel", "statins", "painkillers", "morphine", "analgesics", "iv_fluids"},
			RedFlags:              []string{"no_angiography", "short_stay", "low_cost"},
		},
		{
			Key: "angina", Name: "Angina Pectoris", Category: "cardiac",
			MinDays: 3, MaxDays: 7,
			MinCost: 60000, MaxCost: 200000, MaxReasonable: 300000,
			RoomType: "icu", ICURequired: true,
			RequiredTreatments:    []string{"ecg", "stress_test", "medication"},
			UnnecessaryTreatments: []string{"bypass_surgery"},
			CommonMedications:     []string{"nitrates", "beta_blockers", "aspirin"},
			RedFlags:              []string{"surgery_billed", "no_ecg"},
		},

		// Orthopedic
		{
			Key: "fracture_tibia", Name: "Tibia Fracture", Category: "orthopedic",
			MinDays: 3, MaxDays: 10,
			MinCost: 80000, MaxCost: 250000, MaxReasonable: 350000,
			RoomType: "private", SurgeryRequired: true,
			RequiredTreatments:    []string{"x-ray", "surgeon"},
			UnnecessaryTreatments: []string{"mri", "extended_physio", "angiography"},
			CommonMedications:     []string{"painkillers", "antibiotics", "tramadol", "cefuroxime", "paracetamol", "diclofenac", "analgesics", "iv fluids"},
			RedFlags:              []string{"no_surgery", "extended_stay"},
		},
		{
			Key: "fracture_radius", Name: "Radius Fracture", Category: "orthopedic",
			MinDays: 3, MaxDays: 7,
			MinCost: 40000, MaxCost: 150000, MaxReasonable: 250000,
			RoomType: "private", SurgeryRequired: true,
			RequiredTreatments:    []string{"xray", "surgery", "cast"},
			UnnecessaryTreatments: []string{"ct_scan"},
			CommonMedications:     []string{"painkillers", "antibiotics"},
			RedFlags:              []string{"no_xray", "no_surgery"},
		},

		// Gastrointestinal
		{
			Key: "appendicitis", Name: "Appendicitis", Category: "gastrointestinal",
			MinDays: 3, MaxDays: 7,
			MinCost: 50000, MaxCost: 120000, MaxReasonable: 180000,
			RoomType: "general", SurgeryRequired: true,
			RequiredTreatments:    []string{"appendectomy", "blood_tests", "ultrasound"},
			UnnecessaryTreatments: []string{"mri"},
			CommonMedications:     []string{"antibiotics", "painkillers"},
			RedFlags:              []string{"no_surgery", "extended_stay"},
		},
		{
			Key: "gallstones", Name: "Gallstones (Cholelithiasis)", Category: "gastrointestinal",
			MinDays: 3, MaxDays: 10,
			MinCost: 70000, MaxCost: 200000, MaxReasonable: 300000,
			RoomType: "private", SurgeryRequired: true,
			RequiredTreatments:    []string{"ultrasound", "laparoscopic_cholecystectomy"},
			UnnecessaryTreatments: []string{"ct_scan", "open_surgery"},
			CommonMedications:     []string{"painkillers", "antibiotics"},
			RedFlags:              []string{"no_ultrasound", "no_surgery"},
		},

		// Respiratory
		{
			Key: "pneumonia", Name: "Pneumonia", Category: "respiratory",
			MinDays: 5, MaxDays: 10,
			MinCost: 25000, MaxCost: 70000, MaxReasonable: 100000,
			RoomType:              "general",
			RequiredTreatments:    []string{"chest_xray", "antibiotics", "iv_fluids"},
			UnnecessaryTreatments: []string{"bronchoscopy", "ct_scan"},
			CommonMedications:     []string{"antibiotics", "bronchodilators"},
			RedFlags:              []string{"no_antibiotics", "surgery_billed"},
		},
		{
			Key: "asthma", Name: "Asthma", Category: "respiratory",
			MinDays: 3, MaxDays: 7,
			MinCost: 20000, MaxCost: 60000, MaxReasonable: 80000,
			RoomType:              "general",
			RequiredTreatments:    []string{"inhalers", "nebulization", "oxygen_support"},
			UnnecessaryTreatments: []string{"mri", "surgery"},
			CommonMedications:     []string{"salbutamol", "steroids"},
			RedFlags:              []string{"surgery_billed", "icu_stay"},
		},

		// Neurological
		{
			Key: "stroke", Name: "Stroke (Cerebrovascular Accident)", Category: "neurological",
			MinDays: 7, MaxDays: 20,
			MinCost: 100000, MaxCost: 400000, MaxReasonable: 600000,
			RoomType: "icu", ICURequired: true,
			RequiredTreatments:    []string{"ct_scan", "mri", "physiotherapy"},
			UnnecessaryTreatments: []string{"surgery"},
			CommonMedications:     []string{"blood_thinners", "statins"},
			RedFlags:              []string{"no_brain_scan", "short_stay"},
		},
		{
			Key: "migraine", Name: "Migraine", Category: "neurological",
			MinDays: 1, MaxDays: 3,
			MinCost: 5000, MaxCost: 20000, MaxReasonable: 30000,
			RoomType:              "general",
			RequiredTreatments:    []string{"pain_management", "neurology_consult"},
			UnnecessaryTreatments: []string{"ct_scan", "mri"},
			CommonMedications:     []string{"triptans", "painkillers"},
			RedFlags:              []string{"mri_billed", "extended_stay"},
		},

		// Endocrine
		{
			Key: "diabetes", Name: "Diabetes Mellitus", Category: "endocrine",
			MinDays: 3, MaxDays: 7,
			MinCost: 15000, MaxCost: 50000, MaxReasonable: 70000,
			RoomType:              "general",
			RequiredTreatments:    []string{"blood_sugar_monitoring", "insulin_therapy"},
			UnnecessaryTreatments: []string{"surgery", "ct_scan"},
			CommonMedications:     []string{"insulin", "metformin"},
			RedFlags:              []string{"no_glucose_test", "icu_stay"},
		},
		{
			Key: "thyroid_disorder", Name: "Thyroid Disorder", Category: "endocrine",
			MinDays: 3, MaxDays: 5,
			MinCost: 10000, MaxCost: 40000, MaxReasonable: 60000,
			RoomType:              "general",
			RequiredTreatments:    []string{"thyroid_function_test"},
			UnnecessaryTreatments: []string{"surgery"},
			CommonMedications:     []string{"thyroxine", "carbimazole"},
			RedFlags:              []string{"unnecessary_scan"},
		},

		// Urological
		{
			Key: "pyelonephritis", Name: "Acute Pyelonephritis", Category: "urological",
			MinDays: 5, MaxDays: 10,
			MinCost: 30000, MaxCost: 80000, MaxReasonable: 120000,
			RoomType:              "general",
			RequiredTreatments:    []string{"antibiotics", "urine_culture", "iv_fluids", "blood_tests"},
			UnnecessaryTreatments: []string{"surgery", "lithotripsy", "dialysis"},
			CommonMedications:     []string{"antibiotics", "ceftriaxone", "levofloxacin", "ciprofloxacin", "painkillers", "antipyretics", "iv_fluids"},
			RedFlags:              []string{"icu_admission", "extended_stay", "surgery_billed"},
		},
		{
			Key: "kidney_stones", Name: "Kidney Stones (Urolithiasis)", Category: "urological",
			MinDays: 3, MaxDays: 7,
			MinCost: 50000, MaxCost: 150000, MaxReasonable: 200000,
			RoomType: "private", SurgeryRequired: true,
			RequiredTreatments:    []string{"ultrasound", "lithotripsy"},
			UnnecessaryTreatments: []string{"ct_scan", "open_surgery"},
			CommonMedications:     []string{"painkillers", "antibiotics"},
			RedFlags:              []string{"no_ultrasound", "no_surgery"},
		},

		// Ophthalmology
		{
			Key: "cataract", Name: "Cataract", Category: "ophthalmology",
			MinDays: 1, MaxDays: 3,
			MinCost: 20000, MaxCost: 60000, MaxReasonable: 80000,
			RoomType: "day_care", SurgeryRequired: true,
			RequiredTreatments:    []string{"phacoemulsification", "lens_implant"},
			UnnecessaryTreatments: []string{"ct_scan", "blood_tests"},
			CommonMedications:     []string{"eye_drops", "antibiotics"},
			RedFlags:              []string{"extended_stay", "no_surgery"},
		},
		{
			Key: "glaucoma", Name: "Glaucoma", Category: "ophthalmology",
			MinDays: 3, MaxDays: 7,
			MinCost: 25000, MaxCost: 70000, MaxReasonable: 100000,
			RoomType:              "day_care",
			RequiredTreatments:    []string{"tonometry", "eye_drops"},
			UnnecessaryTreatments: []string{"surgery"},
			CommonMedications:     []string{"timolol", "latanoprost"},
			RedFlags:              []string{"surgery_billed"},
		},
	}
}

// manualAliases maps free-text diagnosis phrases to disease keys. These are
// the curated entries; auto-derived aliases are merged on top at load time
// with manual entries taking precedence.
func manualAliases() map[string]string {
	return map[string]string{
		// Infectious
		"dengue":         "dengue_fever",
		"dengue fever":   "dengue_fever",
		"malaria":        "malaria",
		"p. vivax":       "malaria",
		"p vivax malaria": "malaria",
		"falciparum malaria": "malaria",
		"plasmodium malaria": "malaria",
		"vivax":          "malaria",
		"plasmodium":     "malaria",
		"falciparum":     "malaria",
		"typhoid":        "typhoid",
		"typhoid fever":  "typhoid",
		"enteric fever":  "typhoid",

		// Cardiac
		"heart attack":          "heart_attack",
		"myocardial infarction": "heart_attack",
		"mi":                    "heart_attack",
		"angina":                "angina",
		"chest pain":            "angina",

		// Orthopedic; bare "fracture" defaults to tibia when unspecified
		"fracture":        "fracture_tibia",
		"tibia fracture":  "fracture_tibia",
		"leg fracture":    "fracture_tibia",
		"radius fracture": "fracture_radius",
		"hand fracture":   "fracture_radius",
		"arm fracture":    "fracture_radius",

		// Gastrointestinal
		"appendicitis":        "appendicitis",
		"appendectomy":        "appendicitis",
		"gallstones":          "gallstones",
		"cholelithiasis":      "gallstones",
		"gall bladder stones": "gallstones",

		// Respiratory
		"pneumonia":        "pneumonia",
		"lung infection":   "pneumonia",
		"urti":             "pneumonia",
		"covid":            "pneumonia",
		"corona":           "pneumonia",
		"asthma":           "asthma",
		"bronchial asthma": "asthma",
		"bronchitis":       "asthma",

		// Neurological
		"stroke":       "stroke",
		"cva":          "stroke",
		"brain stroke": "stroke",
		"migraine":     "migraine",
		"headache":     "migraine",

		// Endocrine
		"diabetes":        "diabetes",
		"sugar":           "diabetes",
		"hyperglycemia":   "diabetes",
		"thyroid":         "thyroid_disorder",
		"hypothyroidism":  "thyroid_disorder",
		"hyperthyroidism": "thyroid_disorder",

		// Urological
		"pyelonephritis":          "pyelonephritis",
		"kidney infection":        "pyelonephritis",
		"uti":                     "pyelonephritis",
		"urinary tract infection": "pyelonephritis",
		"kidney stone":            "kidney_stones",
		"renal calculus":          "kidney_stones",
		"renal stone":             "kidney_stones",
		"ureteric calculus":       "kidney_stones",
		"urolithiasis":            "kidney_stones",

		// Ophthalmology
		"cataract":     "cataract",
		"lens opacity": "cataract",
		"glaucoma":     "glaucoma",
		"eye pressure": "glaucoma",
	}
}

// coverageRules returns the plan-tier coverage tables.
func coverageRules() map[domain.PlanTier]domain.CoverageRules {
	return map[domain.PlanTier]domain.CoverageRules{
		domain.PlanBasic: {
			Plan:              domain.PlanBasic,
			RoomRentLimit:     5000,
			ICULimit:          15000,
			SurgeryLimit:      150000,
			CoPay:             0.10,
			DayCareProcedures: []string{"dialysis", "chemotherapy", "endoscopy", "cataract_surgery"},
			Exclusions:        []string{"cosmetic_surgery", "dental_care", "vision_care"},
			DiseaseLimits: map[string]float64{
				"dengue_fever":     80000,
				"malaria":          60000,
				"typhoid":          90000,
				"heart_attack":     600000,
				"angina":           300000,
				"fracture_tibia":   350000,
				"fracture_radius":  250000,
				"appendicitis":     180000,
				"gallstones":       300000,
				"pneumonia":        100000,
				"asthma":           80000,
				"stroke":           600000,
				"migraine":         30000,
				"diabetes":         70000,
				"thyroid_disorder": 60000,
				"pyelonephritis":   120000,
				"kidney_stones":    200000,
				"cataract":         80000,
				"glaucoma":         100000,
			},
		},
		domain.PlanPremium: {
			Plan:              domain.PlanPremium,
			RoomRentLimit:     10000,
			ICULimit:          25000,
			SurgeryLimit:      300000,
			CoPay:             0.05,
			DayCareProcedures: []string{"dialysis", "chemotherapy", "endoscopy", "cataract_surgery", "angioplasty"},
			Exclusions:        []string{"cosmetic_surgery", "fertility_treatment"},
			DiseaseLimits: map[string]float64{
				"dengue_fever":     120000,
				"malaria":          90000,
				"typhoid":          120000,
				"heart_attack":     800000,
				"angina":           400000,
				"fracture_tibia":   500000,
				"fracture_radius":  350000,
				"appendicitis":     250000,
				"gallstones":       400000,
				"pneumonia":        150000,
				"asthma":           120000,
				"stroke":           800000,
				"migraine":         50000,
				"diabetes":         100000,
				"thyroid_disorder": 90000,
				"pyelonephritis":   180000,
				"kidney_stones":    300000,
				"cataract":         120000,
				"glaucoma":         150000,
			},
		},
	}
}

// Guidelines holds standard per-unit treatment cost references, exposed for
// report rendering and catalog introspection.
type Guidelines struct {
	RoomRentPerDay     map[string]float64 `json:"room_rent"`
	ProcedureCosts     map[string]float64 `json:"procedure_costs"`
	InvestigationCosts map[string]float64 `json:"investigation_costs"`
}

func treatmentGuidelines() Guidelines {
	return Guidelines{
		RoomRentPerDay: map[string]float64{
			"general": 2000,
			"private": 5000,
			"deluxe":  8000,
			"icu":     10000,
		},
		ProcedureCosts: map[string]float64{
			"angiography":      30000,
			"bypass_surgery":   200000,
			"angioplasty":      150000,
			"fracture_surgery": 80000,
			"appendectomy":     60000,
		},
		InvestigationCosts: map[string]float64{
			"blood_tests": 2000,
			"xray":        1500,
			"ultrasound":  3000,
			"ct_scan":     8000,
			"mri":         12000,
		},
	}
}
