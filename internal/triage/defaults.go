package triage

import "github.com/jonesrussell/north-cloud/triage/internal/domain"

// DefaultUnknownCategory is reported when no category keyword occurs in a complaint.
const DefaultUnknownCategory = "Onbekend"

// DefaultThreshold is the toxicity cutoff for the threat flag.
const DefaultThreshold = 0.5

// Neighborhood weights are integers in [MinNeighborhoodWeight, MaxNeighborhoodWeight].
const (
	MinNeighborhoodWeight = -2
	MaxNeighborhoodWeight = 2
)

// DefaultUrgentTerms lists the emergency words that add the urgent bonus
// wherever they occur in a complaint.
func DefaultUrgentTerms() []string {
	return []string{
		"gevaarlijk", "onveilig", "spoed", "levensgevaar", "gewond", "overstroming", "brand",
		"explosie", "instorting", "giftig", "gaslek", "stroomuitval", "ongeluk", "aanrijding",
		"verwonding", "verstikking", "verdrinking", "bedreiging", "inbraak", "overval", "vandalisme",
		"agressie", "geweld", "paniek", "evacuatie", "noodsituatie", "ramp", "crisis", "epidemie",
		"besmetting", "vergiftiging", "ontploffing", "verzakking", "botsing", "calamiteit",
	}
}

// DefaultHighPriority lists the categories that receive the high-priority bonus out of the box.
func DefaultHighPriority() []string {
	return []string{"Infrastructuur", "Verkeer en Mobiliteit", "Waterbeheer"}
}

// DefaultNeighborhoods returns the Utrecht neighborhoods with their default weights.
func DefaultNeighborhoods() []domain.Neighborhood {
	return []domain.Neighborhood{
		{Name: "Binnenstad", Weight: 0},
		{Name: "Lombok", Weight: 1},
		{Name: "Wittevrouwen", Weight: -1},
		{Name: "Oog in Al", Weight: -2},
		{Name: "Leidsche Rijn", Weight: -1},
		{Name: "Overvecht", Weight: 2},
		{Name: "Kanaleneiland", Weight: 2},
		{Name: "Zuilen", Weight: 1},
		{Name: "Tuindorp", Weight: -2},
		{Name: "Hoograven", Weight: 1},
		{Name: "Tolsteeg", Weight: -1},
		{Name: "Vleuten-De Meern", Weight: -1},
		{Name: "Voordorp", Weight: -2},
		{Name: "De Uithof (Utrecht Science Park)", Weight: 0},
		{Name: "Nieuw Engeland", Weight: 1},
		{Name: "Dichterswijk", Weight: 0},
		{Name: "Rivierenwijk", Weight: 1},
		{Name: "Hoge Weide", Weight: -1},
		{Name: "Parkwijk", Weight: 0},
		{Name: "Terwijde", Weight: -1},
		{Name: "Papendorp", Weight: 2},
		{Name: "Elinkwijk", Weight: 2},
	}
}

// DefaultCategories returns the municipal categories in display order. The
// unknown category leads the list with no keywords. Some keywords appear in
// more than one category, and a few appear twice within one.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{Name: DefaultUnknownCategory, Keywords: []string{}},
		{Name: "Infrastructuur", Keywords: []string{
			"wegen", "verkeer", "infrastructuur", "borden", "tunnel", "brug", "wegdek", "wegmarkering",
			"rotonde", "snelweg", "stoeprand", "verkeerslichten", "fietspad", "tegel", "putdeksel", "afsluiting",
			"fout wegdek", "slecht wegdek", "put", "stoep", "gaten in weg", "werkzaamheden", "wegenis", "wegomlegging",
			"verkeersregelaar", "belasting", "verkeershinder", "rijstrook", "oever", "bruggen", "kruispunt",
			"beton", "storing", "wegonderhoud", "wegconstructie", "rijbaan", "verkeersbord", "afslag", "politieblokkade",
			"borden", "drempel", "sloot", "wegversmalling", "wegbeveiliging", "achterstallig onderhoud", "slipgevaar",
			"fietsers", "auto", "afzetting", "straatmeubilair", "hoeken", "achteruitrijden", "snelheidsmeter", "geluidswal",
		}},
		{Name: "Afvalbeheer", Keywords: []string{
			"afval", "vuilnis", "zwerfvuil", "container", "recycling", "scheiding", "plastic", "papier", "glas",
			"groenafval", "restafval", "tuinafval", "milieu", "ophaaldienst", "afvalzak", "afvalbak", "afvalbakken",
			"containerpark", "geur", "vuil", "verwerking", "afvalscheiding", "afvalophaal", "bak", "afvalcontainer",
			"hondenscheet", "zwerfvuilplaag", "struiken", "plastic zak", "luiers", "borden", "onvoldoende vuilnisbakken",
			"afvalindustrie", "restafval", "goederen", "grofvuil", "afvalinslag", "storten", "ongewenst vuil", "afvalverwerking",
			"plastic in zee", "afvalput", "geurhinder", "vuilniswagen", "kliko", "dierafval", "afvalmonsters",
			"afvaldistributie", "geurvervuiling", "hondenpoep", "afvalbeheer", "chemisch afval", "teveel afval",
			"verpakking", "afvalreductie", "gemeente vuil", "gesloten vuilnisbak", "groenafvalophaling", "niet gehaalde zakken",
		}},
		{Name: "Verlichting", Keywords: []string{
			"verlichting", "lampen", "straatverlichting", "verlichtingstekort", "lampen defect", "verlichtingspaal",
			"licht", "verlichtingsinstallatie", "lantaarnpaal", "verlichtingsproblemen", "lamp kapot", "flikkering",
			"onderhoud verlichting", "lampen branden niet", "energiebesparing verlichting", "lichtsterkte", "oplichtende paal",
			"verlichtingsoplossing", "kapotte straatlamp", "fout verlichting", "verkeerde verlichting", "verlichting vervangen",
			"verlichting uit", "lichteffecten", "brandende lamp", "lamp vervangen", "verlichtingstekort", "verlichte straat",
			"donkere straten", "overlast verlichting", "straatverlichting dimmen", "overlast van verlichting",
			"energiezuinige verlichting", "verlichtingsplan", "lichten", "straatlampen", "palen", "lampen schijnen",
			"lichtvervuiling", "lantaarns", "dimbaar", "lampen storen", "knipperende verlichting", "verlichtingsinfrastructuur",
			"led verlichting", "donkere zones", "nachtverlichting", "verlichting hangende kabels", "verlichting bij overgangen",
		}},
		{Name: "Overlast", Keywords: []string{
			"overlast", "lawaai", "hinder", "storing", "geluid", "overlastgevers", "buurtlawaai", "lawaai overlast",
			"storingen", "luidruchtig", "herrie", "geluidsoverlast", "overlast van verkeer", "geluidsoverlast woningen",
			"huisdieren", "gesprek", "drummen", "hoorn", "restaurantlawaai", "luide muziek", "scooters", "motorrijders", "vuurwerk",
			"geluidsbarrières", "overlast van apparaten", "verkeersgeluiden", "gedoe", "geluidshinder", "horecagelegenheden",
			"restauranthinder", "misbruik", "drukte", "onwenselijk gedrag", "groepjes", "stoornis", "woningen",
			"onrustige buurt", "buurtprobleem", "geluidsoverlast speeltuinen", "burenlawaai", "luidruchtige feestjes",
			"geen privacy", "lawaai van voertuigen", "overlast van bewoners", "lawaai tijdens nacht", "open ramen",
			"drukte op straat", "ergernis", "overtreding van stilte", "storing wifi", "smog", "overlast van roken",
			"lawaai van kinderen", "probleem met afval", "afvaloverlast", "jongerenlawaai", "weergalmende geluiden",
			"hangjongeren", "hangjeugd",
		}},
		{Name: "Groenbeheer", Keywords: []string{
			"groen", "tuinen", "plantsoen", "bomen", "gras", "groenvoorziening", "groenonderhoud", "tuinbeheer",
			"planten", "bloemen", "tuin", "wilde planten", "planten in de openbare ruimte", "snoeien", "struiken", "takken",
			"schoonmaken", "groene plekken", "plantsoenonderhoud", "groene energie", "bomenkap", "dode bomen", "bloemplantsoen",
			"bladeren", "verwaarlozing", "onvoldoende groen", "tuinieren", "hagen", "waterbeheer", "wateroverlast", "bloei",
			"bomen planten", "tuinservice", "plantgoed", "boomverzorging", "groencompensatie", "zaaien", "gronddoelen",
			"ecologisch beheer", "buitenruimte", "bloemenperk", "moestuin", "wildgroei", "plantenverzorging", "kappen",
			"bloemenperken", "terrasbeplanting", "tuinonderhoud", "groenvoorzieningen", "onderhoud bomen", "aarden",
			"groenisolatie", "wilde bloemen", "afgevallen bladeren", "plantsoendiensten", "groenvoorzieningbeheer", "groenplan",
			"natuurbehoud", "natuurbescherming", "groenbeheer", "milieuplan", "rondstruinen", "groenplan",
		}},
		{Name: "Waterbeheer", Keywords: []string{
			"overstroming", "wateroverlast", "waterschade", "riolering", "watervoorziening", "afvoer", "dijk", "vloed",
			"stormwater", "waterput", "waterkwaliteit", "afwateren", "kanaal", "rivier", "waterbeheer", "pompstation",
			"waterpompen", "overbelaste riolering", "watervloed", "drainage", "regenwater", "waterkracht", "irrigatie",
			"sloot", "onderwaterdorp", "droogte", "waterproblematiek", "waterafvoer", "watermolen", "waterafvoersysteem",
			"dijkverhoging", "regensensor", "moeras", "polder", "waterberging", "vijver", "regenwatertank", "waterprijs",
			"waterinfrastructuur", "binnendijk", "beek", "waterzuivering", "afvoerleidingen", "vloedwal", "wateropvang",
			"ondergrondse waterpomp", "dijken", "waterproblemen", "grondwater", "schade door water", "boezem", "regenpijp",
			"waterputting", "waterpeil", "vijverbeheer", "overstromingsgebieden", "waterpompstations", "waterschapslasten",
		}},
		{Name: "Verkeer en Mobiliteit", Keywords: []string{
			"verkeer", "files", "verkeersdrukte", "verkeershinder", "stoplichten", "verkeersongeluk", "toegangspaden",
			"verkeerscirculatie", "parkeren", "parkeerproblemen", "verkeersregelaar", "omleiding", "auto's", "verkeersbord",
			"fietsers", "scooters", "motoren", "taxi's", "ov$", "trein", "bussen", "verkeersignalen", "verkeersintensiteit",
			"snelheidsmetingen", "auto parkeren", "blokken", "snelheid", "rijstroken", "stadsverkeer", "verkeersafsluitingen",
			"politiecontrole", "parkeerbelasting", "verkeersrondjes", "verkeersomleiding", "rijbanen", "rondrijden", "filedruk",
			"achterstallig onderhoud", "mobility as a service", "overvolle bussen", "overtredingen", "stadsvervoer",
		}},
		{Name: "Belastingen en geldzaken", Keywords: []string{
			"belasting", "aangifte", "inkomstenbelasting", "btw", "ozb", "gemeentebelasting", "heffing", "toeslag", "subsidie", "boete",
			"betalingsregeling", "schuld", "kwijtschelding", "bezwaar", "belastingaanslag", "belastingdienst", "toeslagen", "hypotheek",
			"lening", "sparen", "begroting", "inkomen", "uitgaven", "financiën", "rekening", "bankzaken", "verzekering", "pensioen",
			"uitkering", "bijstand", "ww", "aow", "kinderbijslag", "studiefinanciering", "zorgtoeslag", "huurtoeslag", "kinderopvangtoeslag",
			"belastingteruggave", "belastingaftrek", "vermogensbelasting", "erfbelasting", "schenkbelasting", "autobelasting", "wegenbelasting",
			"afvalstoffenheffing", "rioolheffing", "waterschapsbelasting", "precariobelasting", "toeristenbelasting", "hondenbelasting",
			"parkeergeld", "leges", "naheffing", "betalingsachterstand", "incasso", "deurwaarder", "bewindvoering", "budgetbeheer",
			"schuldhulpverlening", "faillissement", "wsnp", "belastingvrije voet", "box 3", "voorlopige aanslag", "definitieve aanslag",
		}},
	}
}

// DefaultSettings bundles every default into one configuration.
func DefaultSettings() Settings {
	weights := DefaultScoringWeights()
	return Settings{
		Categories:      DefaultCategories(),
		UnknownCategory: DefaultUnknownCategory,
		HighPriority:    DefaultHighPriority(),
		Neighborhoods:   DefaultNeighborhoods(),
		Threshold:       DefaultThreshold,
		Weights:         &weights,
		UrgentTerms:     DefaultUrgentTerms(),
	}
}
