package main

import (
	"context"
	"fmt"

	contractx "github.com/finsightai/finsight/agent/contract"
	guardrailx "github.com/finsightai/finsight/agent/guardrail"
	orchestratorx "github.com/finsightai/finsight/agent/orchestrator"
	promptx "github.com/finsightai/finsight/agent/prompt"
	retrieverx "github.com/finsightai/finsight/agent/retriever"
	routerx "github.com/finsightai/finsight/agent/router"
	statex "github.com/finsightai/finsight/agent/state"
	toolx "github.com/finsightai/finsight/agent/tool"
	"github.com/finsightai/finsight/finstore"
	configx "github.com/finsightai/finsight/pkg/config"
	llmclientx "github.com/finsightai/finsight/pkg/llmclient"
	_ "github.com/finsightai/finsight/pkg/logger/autoload"
	websearchx "github.com/finsightai/finsight/pkg/websearch"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	llmCfg := configx.MustNew[llmclientx.Config]("LLM")
	llmClient := llmclientx.MustNew(*llmCfg)

	storeCfg := configx.MustNew[finstore.Config]("FINSTORE")
	db, err := finstore.NewDB(*storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open finstore database")
	}
	defer db.Close()
	store := finstore.MustNew(db)

	searchCfg := configx.MustNew[websearchx.Config]("WEBSEARCH")
	searchClient := websearchx.MustNew(*searchCfg)

	registry := toolx.MustNewRegistry(
		toolx.NewCalculator(),
		toolx.NewMarketData(store),
		toolx.NewSentiment(store),
		toolx.NewWebSearch(searchClient),
	)

	retrieverCfg := configx.MustNew[retrieverx.Config]("RETRIEVER")
	passageRetriever, err := retrieverx.New(llmClient, store, *retrieverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build retriever")
	}

	prompts := promptx.LoadPromptSet()

	routerCfg := configx.MustNew[routerx.Config]("ROUTER")
	queryRouter := routerx.New(*routerCfg, buildClassifier(ctx, *llmCfg, prompts.Classifier))

	guard := guardrailx.New(*configx.MustNew[guardrailx.Config]("GUARDRAIL"))

	conversationCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH")
	conversations, err := statex.NewUpstashRedisStore(*conversationCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build conversation store")
	}

	orchestratorCfg := configx.MustNew[orchestratorx.Config]("ORCHESTRATOR")
	engine, err := orchestratorx.New(
		conversations,
		guard,
		queryRouter,
		registry,
		passageRetriever,
		llmClient,
		prompts.Analyst,
		*orchestratorCfg,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	queries := []string{
		"Calculate the P/E ratio for a stock with price $150 and EPS $8",
		"What is the sentiment around Apple this quarter?",
		"How did the technology sector perform against rising interest rates?",
	}
	for _, q := range queries {
		resp, err := engine.HandleQuery(ctx, q, "demo-conversation")
		if err != nil {
			log.Error().Err(err).Str("query", q).Msg("query failed")
			continue
		}
		printResponse(q, resp)
	}
}

// buildClassifier compiles the LLM fallback classifier. Routing works without
// it, so a classifier build failure only costs escalation.
func buildClassifier(ctx context.Context, llmCfg llmclientx.Config, systemPrompt string) routerx.Classifier {
	chatModel, err := llmCfg.NewChatModel(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("classifier model unavailable, using heuristics only")
		return nil
	}

	classifier, err := routerx.NewLLMClassifier(ctx, chatModel, systemPrompt)
	if err != nil {
		log.Warn().Err(err).Msg("classifier graph unavailable, using heuristics only")
		return nil
	}
	return classifier
}

func printResponse(query string, resp contractx.Response) {
	fmt.Printf("Q: %s\n", query)
	fmt.Printf("A: %s\n", resp.Answer)
	for _, d := range resp.Disclaimers {
		fmt.Printf("   %s\n", d)
	}
	for _, entry := range resp.ToolTrace {
		fmt.Printf("   tool=%s status=%s latency=%s\n", entry.ToolID, entry.Status, entry.Latency)
	}
	fmt.Println()
}
