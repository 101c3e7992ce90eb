package guardrails

// Vocabulary is kept in sync with the portal's client-side screening so
// both layers reject the same terms.

var validSupplements = toSet([]string{
	// popular supplements
	"ashwagandha", "cbd", "melatonin", "melatonina", "creatine", "creatina",
	"protein", "proteina", "whey", "collagen", "colageno", "caffeine", "cafeina",
	"bcaa", "glutamine", "glutamina", "beta-alanine", "beta-alanina",
	"l-carnitine", "l-carnitina", "coq10", "rhodiola", "ginseng",
	"tribulus", "maca", "spirulina", "chlorella", "moringa",

	// fatty acids
	"omega-3", "omega-6", "omega-9", "fish-oil", "aceite-de-pescado",
	"krill-oil", "flaxseed", "linaza", "chia",

	// vitamins
	"vitamin-a", "vitamina-a", "vitamin-b", "vitamina-b",
	"vitamin-b12", "b12", "vitamin-c", "vitamina-c",
	"vitamin-d", "vitamina-d", "vitamin-d3", "d3",
	"vitamin-e", "vitamina-e", "vitamin-k", "vitamina-k",
	"biotin", "biotina", "niacin", "niacina", "riboflavin", "riboflavina",
	"thiamine", "tiamina", "folate", "folato", "folic-acid", "acido-folico",

	// minerals
	"magnesium", "magnesio", "zinc", "iron", "hierro",
	"calcium", "calcio", "potassium", "potasio",
	"selenium", "selenio", "chromium", "cromo",
	"copper", "cobre", "manganese", "manganeso",
	"iodine", "yodo", "phosphorus", "fosforo",

	// amino acids
	"l-theanine", "l-teanina", "taurine", "taurina",
	"arginine", "arginina", "lysine", "lisina",
	"leucine", "leucina", "isoleucine", "isoleucina",
	"valine", "valina", "glycine", "glicina",

	// herbs and extracts
	"turmeric", "curcuma", "ginger", "jengibre",
	"garlic", "ajo", "green-tea", "te-verde",
	"black-pepper", "pimienta-negra", "cinnamon", "canela",
	"valerian", "valeriana", "chamomile", "manzanilla",
	"echinacea", "milk-thistle", "cardo-mariano",
	"saw-palmetto", "ginkgo-biloba", "st-johns-wort",
	"elderberry", "sauco", "astragalus", "astragalo",

	// probiotics and prebiotics
	"probiotics", "probioticos", "prebiotics", "prebioticos",
	"lactobacillus", "bifidobacterium", "fiber", "fibra",

	// digestive enzymes
	"digestive-enzymes", "enzimas-digestivas",
	"bromelain", "bromelina", "papain", "papaina",

	// antioxidants
	"resveratrol", "quercetin", "quercetina",
	"alpha-lipoic-acid", "acido-alfa-lipoico",
	"glutathione", "glutation", "nac", "n-acetyl-cysteine",

	// other
	"colostrum", "calostro", "bee-pollen", "polen-de-abeja",
	"royal-jelly", "jalea-real", "propolis", "propoleo",
	"glucosamine", "glucosamina", "chondroitin", "condroitina",
	"msm", "hyaluronic-acid", "acido-hialuronico",
})

var validCategories = toSet([]string{
	"sleep", "sueño", "dormir", "insomnia", "insomnio",
	"cognitive", "cognitivo", "memory", "memoria", "focus", "enfoque",
	"brain", "cerebro", "mental", "concentration", "concentracion",
	"muscle", "musculo", "muscle-gain", "ganar-musculo",
	"strength", "fuerza", "performance", "rendimiento",
	"energy", "energia", "fatigue", "fatiga", "vitality", "vitalidad",
	"immune", "inmune", "immunity", "inmunidad", "defense", "defensa",
	"heart", "corazon", "cardiovascular", "cardio",
	"stress", "estres", "anxiety", "ansiedad", "calm", "calma",
	"mood", "animo", "depression", "depresion",
	"joint", "articulaciones", "joints", "bones", "huesos",
	"skin", "piel", "hair", "cabello", "nails", "uñas",
	"digestion", "gut", "intestino",
	"weight", "peso", "fat-loss", "perder-grasa",
	"metabolism", "metabolismo", "thyroid", "tiroides",
	"testosterone", "testosterona", "hormone", "hormona",
	"antioxidant", "antioxidante", "inflammation", "inflamacion",
	"detox", "desintoxicacion", "liver", "higado",
	"vision", "vista", "eyes", "ojos",
	"fertility", "fertilidad", "libido",
	"recovery", "recuperacion", "workout", "entrenamiento",
	"endurance", "resistencia", "stamina",
})

var blockedTerms = toSet([]string{
	// cooking recipes
	"recipe", "receta", "pizza", "pasta", "cake", "pastel",
	"bread", "pan", "cookie", "galleta", "dessert", "postre",
	"salad", "ensalada", "soup", "sopa", "stew", "guiso",

	// prescription drugs
	"antibiotic", "antibiotico", "penicillin", "penicilina",
	"amoxicillin", "amoxicilina", "ibuprofen", "ibuprofeno",
	"aspirin", "aspirina", "acetaminophen", "paracetamol",
	"opioid", "opioide", "morphine", "morfina",
	"oxycodone", "hydrocodone", "fentanyl",
	"adderall", "ritalin", "xanax", "valium",
	"prozac", "zoloft", "lexapro",

	// recreational drugs
	"cocaine", "cocaina", "heroin", "heroina",
	"methamphetamine", "metanfetamina", "meth",
	"marijuana", "marihuana", "cannabis", "weed",
	"lsd", "ecstasy", "mdma", "ketamine", "ketamina",

	// anabolic steroids
	"steroid", "esteroide", "anabolic", "anabolico",
	"testosterone-injection", "hgh", "growth-hormone",
	"trenbolone", "deca", "dianabol", "winstrol",

	// offensive
	"bomb", "bomba", "weapon", "arma",
	"poison", "veneno", "kill", "matar",

	// other unwanted content
	"porn", "porno", "sex", "sexo",
	"hack", "hackear", "crack",
})

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}
