package media

import "strings"

// Matches reports whether an image filename and an audio filename refer to
// the same track. The test is deliberately loose: after lowercasing and
// stripping extensions, either stem containing the other counts as a match.
// There is no similarity scoring; callers take the first match found.
func Matches(imageName, audioName string) bool {
	img := strings.ToLower(Stem(imageName))
	audio := strings.ToLower(Stem(audioName))
	if img == "" || audio == "" {
		return false
	}
	return strings.Contains(audio, img) || strings.Contains(img, audio)
}

// FirstMatch returns the first audio filename that matches the image, in
// slice order.
func FirstMatch(imageName string, audioNames []string) (string, bool) {
	for _, audio := range audioNames {
		if Matches(imageName, audio) {
			return audio, true
		}
	}
	return "", false
}
