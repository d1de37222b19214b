// Package audiocore implements the real-time audio capture pipeline for
// audiostream: a wait-free bridge between the soundcard callback and the
// rest of the system, a bounded history of recently captured chunks, and
// wall-clock timestamp anchoring of samples.
//
// # Architecture Overview
//
//	device callback -> StreamContext.OnFrames -> ChunkQueue -> consumer
//	                                                             |-> HistoryLedger (timestamp queries)
//	                                                             |-> EncodeFeed -> encoder.OpusEncoder
//
// The device driver invokes OnFrames once per hardware buffer on its
// real-time thread. OnFrames accumulates interleaved samples into a working
// buffer, stamps a chunk via the TimeAnchor when the buffer fills, and pushes
// it onto the ChunkQueue. The queue is a single-producer/single-consumer ring
// with atomic indices: pushes never block, and a full queue drops the chunk
// instead of waiting. A consumer goroutine periodically drains the queue, appends each
// chunk to the HistoryLedger and hands the batch to its sink.
//
// # Concurrency and Thread Safety
//
// Exactly two roles touch a StreamContext: one real-time producer (the
// device callback calling OnFrames) and one consumer (calling GetNewChunks,
// Query and AvailableRange). The producer never allocates beyond chunk
// payloads, never takes a lock and never blocks; the HistoryLedger mutex is
// only ever taken on the consumer side. Recording can be paused and resumed
// through an atomic flag read by the producer.
//
// Teardown requires the caller to stop the device first so that no further
// callbacks arrive; the pipeline has no internal fence against a callback
// racing destruction.
package audiocore
