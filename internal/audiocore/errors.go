package audiocore

// Component identifier for audiocore errors
const ComponentAudioCore = "audiocore"
