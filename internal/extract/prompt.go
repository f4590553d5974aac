package extract

import "fmt"

const fence = "```"

// promptTemplate is filled with: source language, original text, human
// analysis, and the code fence marker. The narrative and technique tags and
// the response shape must stay in sync with the analysis package schema.
const promptTemplate = `You are an expert analyst of Russian propaganda and disinformation techniques. Analyze the provided text and human analysis to identify specific propaganda patterns.

ORIGINAL SOURCE TEXT (%[1]s):
%[4]s
%[2]s
%[4]s

HUMAN ANALYSIS:
%[4]s
%[3]s
%[4]s

Please identify and extract:

1. **TRANSLATION** (if original text is not in English):
   - Provide accurate English translation of the original text
   - If original is already in English, set to null

2. **PRIMARY NARRATIVE FRAMEWORK** (choose one):
   - ENCIRCLEMENT_NARRATIVE (Russia surrounded by enemies)
   - NATO_EXPANSION_EXISTENTIAL_THREAT (NATO as existential threat)
   - WESTERN_HYPOCRISY_FRAMING (Western double standards)
   - BOTH_SIDES_FALSE_EQUIVALENCY (false moral equivalencies)
   - US_DECLINE_DEGENERACY (Western moral decline)
   - TRADITIONAL_VALUES_DEFENSE (Russia defending values)
   - MULTIPOLAR_WORLD_ORDER (challenging US hegemony)
   - ILLEGITIMATE_SECURITY_CONCERNS (framing aggression as defense)
   - HISTORICAL_GRIEVANCES (invoking past injustices)
   - OTHER (specify)

3. **PROPAGANDA TECHNIQUES** (list all that apply):
   - WHATABOUTISM (deflecting with "what about...")
   - UKRAINE_CORRUPTION_NARRATIVE (emphasizing Ukrainian corruption)
   - SANCTIONS_COUNTER_NARRATIVE (sanctions as harmful/ineffective)
   - False_Equivalency (both sides are the same)
   - Emotional_Manipulation (fear, anger, pride appeals)
   - Historical_Revisionism (distorting historical facts)
   - Victim_Blaming (portraying aggressor as victim)
   - Deflection (avoiding direct responses)
   - OTHER (specify)

4. **KEY PROPAGANDA PHRASES** (exact quotes from source):
   - List 5-10 specific phrases that carry propaganda messaging

5. **EMOTIONAL APPEALS** (what emotions are targeted):
   - Fear, Anger, Pride, Victimhood, Righteousness, etc.

6. **TARGET AUDIENCE**:
   - Who is this propaganda designed to influence?

7. **SCORING** (0-5 scale):
   - Russian_Alignment: How closely does this match Russian state messaging?
   - Sophistication: How well-crafted and subtle is the propaganda?
   - Effectiveness: How persuasive would this be to target audience?

Note: Provide accurate translation even if source language detection is uncertain.

Respond in this exact JSON format:
%[4]sjson
{
  "translation": "English translation of original text (null if already English)",
  "primary_narrative": "NARRATIVE_NAME",
  "techniques": ["TECHNIQUE1", "TECHNIQUE2"],
  "key_phrases": ["phrase1", "phrase2", "phrase3"],
  "emotional_appeals": ["emotion1", "emotion2"],
  "target_audience": "description of intended audience",
  "scores": {
    "russian_alignment": 0,
    "sophistication": 0,
    "effectiveness": 0
  },
  "analysis_notes": "Brief explanation of why these patterns were identified"
}
%[4]s`

// buildPrompt assembles the analysis prompt for one article.
func buildPrompt(originalText, humanAnalysis, sourceLanguage string) string {
	if sourceLanguage == "" {
		sourceLanguage = "unknown"
	}
	return fmt.Sprintf(promptTemplate, sourceLanguage, originalText, humanAnalysis, fence)
}
