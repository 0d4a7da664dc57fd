// Package dataset models the on-disk layout of an AEC evaluation dataset
// and enumerates its audio files.
//
// The dataset is a directory tree of the form
//
//	<root>/<split>/<category>/audio/<subcategory>/*.wav
//
// for the base noise and speech categories, plus synthetic mixtures under
//
//	<root>/augmentations/<augmentation>/audio/<subcategory>/*.wav
//
// Filenames of mixture files embed the signal-to-noise ratio of the mix as
// a trailing `SNR_<number>.wav` token, e.g.
// `Resampled_kr_noise_restaurant_5__0_SNR_3.5.wav`. [ParseSNR] recovers
// that number.
package dataset

// Category is one of the base sound categories of the dataset.
type Category string

const (
	CategoryBabble  Category = "babble"
	CategorySpeech  Category = "speech"
	CategoryMusic   Category = "music"
	CategoryWind    Category = "wind"
	CategoryMachine Category = "machine"
)

// Categories lists all base categories in a stable order.
var Categories = []Category{
	CategoryBabble,
	CategorySpeech,
	CategoryMusic,
	CategoryWind,
	CategoryMachine,
}

// IsValid reports whether c is a recognised base category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBabble, CategorySpeech, CategoryMusic, CategoryWind, CategoryMachine:
		return true
	}
	return false
}

// Augmentation is one of the synthetic speech-in-noise mixture sets stored
// under the augmentations/ subtree.
type Augmentation string

const (
	AugmentationSpeechInMachine Augmentation = "speech_in_machine"
	AugmentationSpeechInMusic   Augmentation = "speech_in_music"
	AugmentationSpeechInWind    Augmentation = "speech_in_wind"
)

// Augmentations lists all augmentation sets in a stable order.
var Augmentations = []Augmentation{
	AugmentationSpeechInMachine,
	AugmentationSpeechInMusic,
	AugmentationSpeechInWind,
}

// IsValid reports whether a is a recognised augmentation set.
func (a Augmentation) IsValid() bool {
	switch a {
	case AugmentationSpeechInMachine, AugmentationSpeechInMusic, AugmentationSpeechInWind:
		return true
	}
	return false
}

// File is a single enumerated audio file together with the layout
// coordinates recovered from its path.
type File struct {
	// Path is the full filesystem path of the .wav file.
	Path string

	// Split is the dataset split directory the file lives under (e.g.
	// "val"). Empty for augmentation files, which live outside the split
	// directories.
	Split string

	// Selection is the category or augmentation name the file was
	// enumerated under (e.g. "babble", "speech_in_wind").
	Selection string

	// Subcategory is the directory directly containing the file (e.g.
	// "babble_restaurant").
	Subcategory string
}
