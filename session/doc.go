// Package session drives one transcription job from audio file to persisted
// text.
//
// A Session moves through Idle, Loading, ProcessingAudio, Transcribing and
// optionally Enhancing before reaching one of the terminal phases Completed,
// Error or Cancelled. The backend lease acquired while loading is ended
// exactly once whichever way the session exits.
//
//	s := session.New(job, factory,
//		session.WithChain(chain),
//		session.WithStager(recordings),
//		session.WithPersister(store),
//	)
//	out := s.Run(ctx)
//	if out.Phase == session.Completed {
//		fmt.Println(out.Result.FinalText())
//	}
package session
