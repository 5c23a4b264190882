/*
Package document implements the document processing workload.

# Overview

The Processor is the function.Handler behind the service: it renders a
document's pages, then extracts content with an LLM. Both stages are
simulated with baseline delays and a small probability of a much slower
run, tagged on the stage span so trace anomaly detection has something
to find.

# Stages

	document.render_pages   span.type=template  metric pages_count
	document.llm_extract    span.type=llm       tag model, metric tokens_processed

Each stage is a child of the invocation's root span and closes before the
root does. Slow runs carry slow_render / slow_llm tags, set before the
delay starts. The root span receives total_pages when both stages finish.

# Determinism

Delays and randomness are injectable for tests:

	p := document.New(tctx, logger,
		document.WithSleep(fakeSleep),
		document.WithSlowProbabilities(0, 0),
	)
*/
package document
