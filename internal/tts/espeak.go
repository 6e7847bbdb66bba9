// Package tts speaks replies through espeak-ng.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

static int
murmur_say(const char *text, const char *lang)
{
	if (!text || !lang)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }

	espeak_VOICE specs = { .languages = lang };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, 0, 0, POS_CHARACTER, 0, espeakCHARS_UTF8, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// Speaker serializes synthesis; espeak-ng keeps global state.
type Speaker struct {
	mu   sync.Mutex
	lang string
}

func New(lang string) *Speaker {
	if lang == "" || lang == "auto" {
		lang = "es"
	}
	return &Speaker{lang: lang}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	clang := C.CString(s.lang)
	defer C.free(unsafe.Pointer(clang))

	if rc := C.murmur_say(ctext, clang); rc != 0 {
		return fmt.Errorf("espeak failed: %d", int(rc))
	}
	return nil
}
