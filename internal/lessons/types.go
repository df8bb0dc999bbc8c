package lessons

import "linguaclash/internal/scoring"

// Folder is a top-level course, usually one TV series.
type Folder struct {
	ID       string     `yaml:"id" json:"id"`
	Title    string     `yaml:"title" json:"title"`
	Order    int        `yaml:"order" json:"order"`
	VideoURL string     `yaml:"video_url" json:"video_url"`
	Episodes []*Episode `yaml:"episodes" json:"episodes"`
}

// Episode groups the parts cut from one episode of the video.
type Episode struct {
	ID    string  `yaml:"id" json:"id"`
	Title string  `yaml:"title" json:"title"`
	Parts []*Part `yaml:"parts" json:"parts"`
}

// Part is one stretch of video followed by exactly three exercises.
type Part struct {
	ID          string       `yaml:"id" json:"id"`
	Title       string       `yaml:"title" json:"title"`
	Instruction string       `yaml:"instruction" json:"instruction"`
	Vocabulary  []VocabEntry `yaml:"vocabulary" json:"vocabulary"`
	Exercises   []Exercise   `yaml:"exercises" json:"exercises"`
}

// VocabEntry is a word the learner can save to their dictionary.
type VocabEntry struct {
	Word       string `yaml:"word" json:"word"`
	Definition string `yaml:"definition" json:"definition"`
}

// Exercise is the static definition of one exercise screen.
type Exercise struct {
	ID       string               `yaml:"id" json:"id"`
	Title    string               `yaml:"title" json:"title"`
	Type     scoring.ExerciseType `yaml:"type" json:"type"`
	GiveUp   int                  `yaml:"give_up" json:"give_up"`
	Policy   scoring.PolicySpec   `yaml:"policy" json:"policy"`
	Options  []string             `yaml:"options" json:"options,omitempty"`
	WordBank []string             `yaml:"word_bank" json:"-"`
	Items    []Question           `yaml:"items" json:"items"`
}

// Question is one item of an exercise. Options override the exercise-wide
// options when set.
type Question struct {
	ID      string   `yaml:"id" json:"id"`
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Answer  string   `yaml:"answer" json:"-"`
	Options []string `yaml:"options" json:"options,omitempty"`
}

// Definition turns the exercise into the input of a scoring session.
func (e Exercise) Definition() scoring.Definition {
	items := make([]scoring.Item, len(e.Items))
	for i, q := range e.Items {
		opts := q.Options
		if len(opts) == 0 {
			opts = e.Options
		}
		items[i] = scoring.Item{
			ID:            q.ID,
			Prompt:        q.Prompt,
			CorrectAnswer: q.Answer,
			Options:       append([]string(nil), opts...),
		}
	}
	return scoring.Definition{
		Type:            e.Type,
		GiveUpThreshold: e.GiveUp,
		Policy:          e.Policy,
		WordBank:        append([]string(nil), e.WordBank...),
		Items:           items,
	}
}

// Ref locates a part inside the catalog.
type Ref struct {
	Folder  string `json:"folder"`
	Episode string `json:"episode"`
	Part    string `json:"part"`
}

// LessonKey is the key scores are stored under: one record per folder and
// episode, holding a score per part.
func (r Ref) LessonKey() string {
	return r.Folder + "/" + r.Episode
}
