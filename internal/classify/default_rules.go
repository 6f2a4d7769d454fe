package classify

// DefaultRules returns the default classification rule table.
//
// Priorities descend through four bands: complete builds (900s), parts
// (700-800s), accessories and tooling (600s), and metadata-only
// fallbacks (below 200). Within a band more specific rules carry higher
// priority so the first match is always the most specific one.
func DefaultRules() []Rule {
	return []Rule{
		// Complete builds.
		{
			Name:     "Complete Glock handgun",
			Priority: 960,
			When:     Predicate{Complete: true, AnyTags: []string{"Handgun", "Pistol"}, ModelContains: "Glock"},
			Taxonomy: []string{"Complete_Firearms", "Handguns", "Glock_Clones", "{model}"},
			PartType: "Complete Build",
		},
		{
			Name:     "Complete 1911 handgun",
			Priority: 950,
			When:     Predicate{Complete: true, AnyTags: []string{"Handgun", "Pistol"}, ModelContains: "1911"},
			Taxonomy: []string{"Complete_Firearms", "Handguns", "1911_Clones"},
			PartType: "Complete Build",
		},
		{
			Name:     "Complete handgun",
			Priority: 940,
			When:     Predicate{Complete: true, AnyTags: []string{"Handgun", "Pistol"}},
			Taxonomy: []string{"Complete_Firearms", "Handguns", "Other_Handguns"},
			PartType: "Complete Build",
		},
		{
			Name:     "Complete AR-15 build",
			Priority: 930,
			When:     Predicate{Complete: true, AnyTags: []string{"AR-15"}},
			Taxonomy: []string{"Complete_Firearms", "Rifles", "AR-15_Builds"},
			GunModel: "AR-15",
			PartType: "Complete Build",
		},
		{
			Name:     "Complete AR-15 build by name",
			Priority: 929,
			When:     Predicate{Complete: true, AnyTags: []string{"Rifle"}, NamePattern: `AR-?15`},
			Taxonomy: []string{"Complete_Firearms", "Rifles", "AR-15_Builds"},
			GunModel: "AR-15",
			PartType: "Complete Build",
		},
		{
			Name:     "Complete AR-22 build",
			Priority: 925,
			When:     Predicate{Complete: true, AnyTags: []string{"AR-22"}},
			Taxonomy: []string{"Complete_Firearms", "Rifles", "AR-22_Builds"},
			GunModel: "AR-22",
			PartType: "Complete Build",
		},
		{
			Name:     "Complete AK build",
			Priority: 920,
			When:     Predicate{Complete: true, AnyTags: []string{"AK-47", "AK-74"}},
			Taxonomy: []string{"Complete_Firearms", "Rifles", "AK_Builds"},
			GunModel: "AK-47",
			PartType: "Complete Build",
		},
		{
			Name:     "Complete rifle",
			Priority: 915,
			When:     Predicate{Complete: true, AnyTags: []string{"Rifle"}},
			Taxonomy: []string{"Complete_Firearms", "Rifles", "Other_Rifles"},
			PartType: "Complete Build",
		},
		{
			Name:     "Complete PCC",
			Priority: 910,
			When:     Predicate{Complete: true, AnyTags: []string{"PCC"}},
			Taxonomy: []string{"Complete_Firearms", "PCCs"},
			PartType: "Complete Build",
		},
		{
			Name:     "Complete shotgun",
			Priority: 905,
			When:     Predicate{Complete: true, AnyTags: []string{"Shotgun"}},
			Taxonomy: []string{"Complete_Firearms", "Shotguns"},
			PartType: "Complete Build",
		},

		// Frames, receivers, uppers, slides.
		{
			Name:     "AR-15 lower",
			Priority: 800,
			When:     Predicate{AnyParts: []string{"Frame", "Receiver", "Lower"}, ModelContains: "AR-15"},
			Taxonomy: []string{"Parts_and_Upgrades", "Frames_and_Receivers", "AR-15_Lowers"},
		},
		{
			Name:     "Glock frame",
			Priority: 795,
			When:     Predicate{AnyParts: []string{"Frame", "Receiver", "Lower"}, ModelContains: "Glock"},
			Taxonomy: []string{"Parts_and_Upgrades", "Frames_and_Receivers", "Glock_Frames"},
		},
		{
			Name:     "Other frame or receiver",
			Priority: 790,
			When:     Predicate{AnyParts: []string{"Frame", "Receiver", "Lower"}},
			Taxonomy: []string{"Parts_and_Upgrades", "Frames_and_Receivers", "Other_Frames"},
		},
		{
			Name:     "AR-15 upper",
			Priority: 780,
			When:     Predicate{AnyParts: []string{"Upper", "Slide"}, ModelContains: "AR-15"},
			Taxonomy: []string{"Parts_and_Upgrades", "Uppers_and_Slides", "AR-15_Uppers"},
		},
		{
			Name:     "Glock slide",
			Priority: 775,
			When:     Predicate{AnyParts: []string{"Upper", "Slide"}, ModelContains: "Glock"},
			Taxonomy: []string{"Parts_and_Upgrades", "Uppers_and_Slides", "Glock_Slides"},
		},
		{
			Name:     "Other upper or slide",
			Priority: 770,
			When:     Predicate{AnyParts: []string{"Upper", "Slide"}},
			Taxonomy: []string{"Parts_and_Upgrades", "Uppers_and_Slides", "Other_Uppers"},
		},

		// Fire control and barrels.
		{
			Name:     "FRT",
			Priority: 760,
			When:     Predicate{AnyTags: []string{"FRT"}},
			Taxonomy: []string{"Parts_and_Upgrades", "Fire_Control", "FRTs"},
			PartType: "Fire Control",
		},
		{
			Name:     "Trigger",
			Priority: 755,
			When:     Predicate{AnyTags: []string{"Trigger"}},
			Taxonomy: []string{"Parts_and_Upgrades", "Fire_Control", "Triggers"},
			PartType: "Fire Control",
		},
		{
			Name:     "Barrel or bolt",
			Priority: 750,
			When:     Predicate{AnyTags: []string{"Barrel", "Bolt", "DIY Barrel"}},
			Taxonomy: []string{"Parts_and_Upgrades", "Barrels_and_Bolts"},
		},

		// Accessories.
		{
			Name:     "Pistol-caliber suppressor",
			Priority: 700,
			When:     Predicate{AnyTags: []string{"Suppressor"}, AnyCalibers: []string{"9x19mm", ".45 ACP", "22 Long Rifle"}},
			Taxonomy: []string{"Accessories", "By_Function", "Suppressors", "Pistol_Caliber", "{caliber}"},
			PartType: "Suppressor",
		},
		{
			Name:     "Rifle-caliber suppressor",
			Priority: 695,
			When:     Predicate{AnyTags: []string{"Suppressor"}, RequireCaliber: true},
			Taxonomy: []string{"Accessories", "By_Function", "Suppressors", "Rifle_Caliber", "{caliber}"},
			PartType: "Suppressor",
		},
		{
			Name:     "Multi-caliber suppressor",
			Priority: 690,
			When:     Predicate{AnyTags: []string{"Suppressor"}},
			Taxonomy: []string{"Accessories", "By_Function", "Suppressors", "Rifle_Caliber", "Multi_Caliber"},
			PartType: "Suppressor",
		},
		{
			Name:     "Magazine by gun model",
			Priority: 680,
			When:     Predicate{AnyTags: []string{"Magazine"}, RequireModel: true},
			Taxonomy: []string{"Accessories", "By_Function", "Magazines", "By_Gun", "{model}_Magazines"},
			PartType: "Magazine",
		},
		{
			Name:     "Magazine by caliber",
			Priority: 675,
			When:     Predicate{AnyTags: []string{"Magazine"}, RequireCaliber: true},
			Taxonomy: []string{"Accessories", "By_Function", "Magazines", "By_Caliber", "{caliber}"},
			PartType: "Magazine",
		},
		{
			Name:     "Other magazine",
			Priority: 670,
			When:     Predicate{AnyTags: []string{"Magazine"}},
			Taxonomy: []string{"Accessories", "By_Function", "Magazines", "Other"},
			PartType: "Magazine",
		},
		{
			Name:     "Optic or sight",
			Priority: 660,
			When:     Predicate{AnyTags: []string{"Sight", "Optic"}},
			Taxonomy: []string{"Accessories", "By_Function", "Optics_and_Sights"},
			PartType: "Optic/Sight",
		},
		{
			Name:     "Muzzle device",
			Priority: 650,
			When:     Predicate{AnyTags: []string{"Muzzle Device"}},
			Taxonomy: []string{"Accessories", "By_Function", "Muzzle_Devices"},
			PartType: "Muzzle Device",
		},
		{
			Name:     "Grip or stock",
			Priority: 640,
			When:     Predicate{AnyTags: []string{"Stock", "Grip", "Pistol Brace"}},
			Taxonomy: []string{"Accessories", "By_Function", "Grips_and_Stocks"},
		},
		{
			Name:     "Furniture",
			Priority: 630,
			When:     Predicate{AnyTags: []string{"Furniture", "Handguard", "Foregrip"}},
			Taxonomy: []string{"Furniture"},
			PartType: "Furniture",
		},

		// Tools and jigs.
		{
			Name:     "Bending jig",
			Priority: 620,
			When:     Predicate{AnyTags: []string{"Jig"}, NamePattern: `Bending`},
			Taxonomy: []string{"Tools_and_Jigs", "Bending_Jigs"},
			PartType: "Jig",
		},
		{
			Name:     "Bending jig by name",
			Priority: 619,
			When:     Predicate{NamePattern: `(Jig|Fixture).*Bending|Bending.*(Jig|Fixture)`},
			Taxonomy: []string{"Tools_and_Jigs", "Bending_Jigs"},
			PartType: "Jig",
		},
		{
			Name:     "Drilling jig",
			Priority: 615,
			When:     Predicate{AnyTags: []string{"Jig"}, NamePattern: `Drill`},
			Taxonomy: []string{"Tools_and_Jigs", "Drilling_Jigs"},
			PartType: "Jig",
		},
		{
			Name:     "CNC fixture",
			Priority: 610,
			When:     Predicate{AnyTags: []string{"Jig", "CNC"}, NamePattern: `CNC|Fixture`},
			Taxonomy: []string{"Tools_and_Jigs", "CNC_Fixtures"},
			PartType: "CNC Fixture",
		},
		{
			Name:     "Assembly tool",
			Priority: 605,
			When:     Predicate{AnyTags: []string{"Jig"}},
			Taxonomy: []string{"Tools_and_Jigs", "Assembly_Tools"},
			PartType: "Tool",
		},
		{
			Name:     "Assembly tool by name",
			Priority: 604,
			When:     Predicate{NamePattern: `\b(Jig|Fixture)\b`},
			Taxonomy: []string{"Tools_and_Jigs", "Assembly_Tools"},
			PartType: "Tool",
		},

		// Fallbacks.
		{
			Name:     "Miscellaneous by gun model",
			Priority: 100,
			When:     Predicate{RequireModel: true},
			Taxonomy: []string{"Miscellaneous", "By_Gun_Model", "{model}"},
			PartType: "Other",
		},
		{
			Name:     "Miscellaneous by caliber",
			Priority: 90,
			When:     Predicate{RequireCaliber: true},
			Taxonomy: []string{"Miscellaneous", "By_Caliber", "{caliber}"},
			PartType: "Other",
		},
		{
			Name:     "Uncategorized",
			Priority: 0,
			When:     Predicate{},
			Taxonomy: []string{"Miscellaneous", "Uncategorized"},
			PartType: "Other",
		},
	}
}
