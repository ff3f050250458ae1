// Package tts speaks replies through espeak-ng.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

static int
zara_speak(const char *text, const char *voice, int rate)
{
	if (!text || !voice)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }

	espeak_VOICE specs = { .languages = voice };
	espeak_SetVoiceByProperties(&specs);
	if (rate > 0)
	{ espeak_SetParameter(espeakRATE, rate, 0); }

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

type Voice struct {
	Language string // espeak-ng voice, e.g. "en", "en-us"
	Rate     int    // words per minute, 0 = espeak default
}

// espeak-ng keeps global state; one utterance at a time.
var mu sync.Mutex

// Speak blocks until text has been played.
func (v Voice) Speak(text string) error {
	if text == "" {
		return nil
	}
	lang := v.Language
	if lang == "" {
		lang = "en"
	}

	mu.Lock()
	defer mu.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	cvoice := C.CString(lang)
	defer C.free(unsafe.Pointer(cvoice))

	if rc := C.zara_speak(ctext, cvoice, C.int(v.Rate)); rc != 0 {
		return fmt.Errorf("espeak-ng failed: %d", int(rc))
	}
	return nil
}
