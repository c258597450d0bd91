// Package entities contains domain entities used across the application.
package entities

// VocabularyItem is one HSK word with its translations and an example sentence.
// Items are read-only once loaded; nothing in the application mutates them.
type VocabularyItem struct {
	ID             int    `json:"id" yaml:"id"`                         // unique within the store
	Hanzi          string `json:"hanzi" yaml:"hanzi"`                   // word in Chinese characters
	Pinyin         string `json:"pinyin" yaml:"pinyin"`                 // romanized pronunciation
	English        string `json:"english" yaml:"english"`               // English translation
	Lao            string `json:"lao" yaml:"lao"`                       // Lao translation
	ExampleHanzi   string `json:"exampleHanzi" yaml:"exampleHanzi"`     // example sentence in Chinese
	ExamplePinyin  string `json:"examplePinyin" yaml:"examplePinyin"`   // example sentence pinyin
	ExampleEnglish string `json:"exampleEnglish" yaml:"exampleEnglish"` // example sentence in English
	ExampleLao     string `json:"exampleLao" yaml:"exampleLao"`         // example sentence in Lao
	Level          int    `json:"level" yaml:"level"`                   // HSK level
}
