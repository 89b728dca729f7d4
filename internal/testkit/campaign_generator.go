package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"postlift/domain/campaign"
	"postlift/domain/core"
)

// CampaignGeneratorConfig configures the synthetic campaign generator
type CampaignGeneratorConfig struct {
	InfluencerCount      int       `json:"influencer_count"`
	PostsPerInfluencer   int       `json:"posts_per_influencer"`
	BaselineOrdersPerDay float64   `json:"baseline_orders_per_day"`
	SpikeOrdersPerPost   int       `json:"spike_orders_per_post"`
	AvgOrderValue        float64   `json:"avg_order_value"`
	NewCustomerRate      float64   `json:"new_customer_rate"`
	CampaignStart        time.Time `json:"campaign_start"`
	CampaignEnd          time.Time `json:"campaign_end"`
	LookbackDays         int       `json:"lookback_days"`
	Seed                 int64     `json:"seed"`
}

// DefaultCampaignConfig returns sensible defaults for synthetic campaigns
func DefaultCampaignConfig() CampaignGeneratorConfig {
	return CampaignGeneratorConfig{
		InfluencerCount:      3,
		PostsPerInfluencer:   4,
		BaselineOrdersPerDay: 12,
		SpikeOrdersPerPost:   8,
		AvgOrderValue:        85,
		NewCustomerRate:      0.6,
		CampaignStart:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CampaignEnd:          time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		LookbackDays:         30,
		Seed:                 42,
	}
}

var productCatalog = []string{
	"Glow Serum 30ml",
	"Night Cream",
	"Vitamin C Cleanser",
	"Hydrating Mist",
	"Clay Mask Duo",
	"Peptide Eye Cream",
}

var handlePool = []string{
	"mia.skin", "jake_reviews", "glowwithana", "dermdiaries", "theserumguy",
	"beautybylena", "skincarebyrose", "honestglow",
}

// CampaignDataGenerator produces a deterministic synthetic campaign: baseline
// order traffic, influencer posts, and post-correlated order spikes. The same
// seed always yields the same dataset.
type CampaignDataGenerator struct {
	config CampaignGeneratorConfig
	rng    *rand.Rand
}

// NewCampaignDataGenerator creates a campaign data generator
func NewCampaignDataGenerator(config CampaignGeneratorConfig) *CampaignDataGenerator {
	return &CampaignDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces the full synthetic dataset: orders (baseline history plus
// campaign-window traffic) and influencers with their posts.
func (g *CampaignDataGenerator) Generate() ([]campaign.Order, []campaign.Influencer) {
	influencers := g.generateInfluencers()

	var orders []campaign.Order
	orders = append(orders, g.generateBaseline()...)
	orders = append(orders, g.generateCampaignTraffic(influencers)...)
	return orders, influencers
}

// generateInfluencers builds accounts with a mix of mentioning and
// non-mentioning posts spread across the campaign window.
func (g *CampaignDataGenerator) generateInfluencers() []campaign.Influencer {
	window := g.config.CampaignEnd.Sub(g.config.CampaignStart)

	influencers := make([]campaign.Influencer, 0, g.config.InfluencerCount)
	for i := 0; i < g.config.InfluencerCount; i++ {
		handle := handlePool[i%len(handlePool)]
		username, _ := core.ParseUsername(handle)

		posts := make([]campaign.Post, 0, g.config.PostsPerInfluencer)
		for j := 0; j < g.config.PostsPerInfluencer; j++ {
			offset := time.Duration(g.rng.Float64() * float64(window))
			product := productCatalog[g.rng.Intn(len(productCatalog))]

			mention := campaign.MentionYes
			caption := fmt.Sprintf("Day %d with the %s, still obsessed. Link in bio!", j+1, product)
			if j%3 == 2 {
				// Every third post is off-topic lifestyle content.
				mention = campaign.MentionNo
				caption = "weekend recharge, no filter"
			}

			posts = append(posts, campaign.Post{
				ID:             core.PostID(fmt.Sprintf("post_%s_%02d", username, j+1)),
				Timestamp:      g.config.CampaignStart.Add(offset).Truncate(time.Minute),
				Caption:        caption,
				LikesCount:     200 + g.rng.Intn(5000),
				CommentsCount:  10 + g.rng.Intn(400),
				ProductMention: mention,
			})
		}

		influencers = append(influencers, campaign.Influencer{
			Username:       username,
			FollowersCount: 10000 + g.rng.Intn(490000),
			Budget:         float64(1000 + g.rng.Intn(9000)),
			Posts:          posts,
		})
	}
	return influencers
}

// generateBaseline produces steady pre-campaign order history so baseline
// estimation has its full lookback.
func (g *CampaignDataGenerator) generateBaseline() []campaign.Order {
	var orders []campaign.Order
	seq := 0
	for day := g.config.LookbackDays; day >= 1; day-- {
		date := g.config.CampaignStart.AddDate(0, 0, -day)
		count := g.poisson(g.config.BaselineOrdersPerDay)
		for i := 0; i < count; i++ {
			seq++
			at := date.Add(time.Duration(8+g.rng.Intn(14)) * time.Hour).
				Add(time.Duration(g.rng.Intn(60)) * time.Minute)
			orders = append(orders, g.order(fmt.Sprintf("base_%05d", seq), at, false))
		}
	}
	return orders
}

// generateCampaignTraffic produces window orders: a baseline-rate trickle
// plus a spike clustered in the hours after each mentioning post.
func (g *CampaignDataGenerator) generateCampaignTraffic(influencers []campaign.Influencer) []campaign.Order {
	var orders []campaign.Order
	seq := 0

	days := int(g.config.CampaignEnd.Sub(g.config.CampaignStart).Hours() / 24)
	for day := 0; day < days; day++ {
		date := g.config.CampaignStart.AddDate(0, 0, day)
		count := g.poisson(g.config.BaselineOrdersPerDay)
		for i := 0; i < count; i++ {
			seq++
			at := date.Add(time.Duration(8+g.rng.Intn(14)) * time.Hour).
				Add(time.Duration(g.rng.Intn(60)) * time.Minute)
			orders = append(orders, g.order(fmt.Sprintf("camp_%05d", seq), at, false))
		}
	}

	for _, inf := range influencers {
		for _, post := range inf.CandidatePosts() {
			for i := 0; i < g.config.SpikeOrdersPerPost; i++ {
				seq++
				// Spikes decay: most orders land within the first hours.
				lag := time.Duration(math.Abs(g.rng.NormFloat64())*4*float64(time.Hour)) +
					time.Duration(g.rng.Intn(30))*time.Minute
				at := post.Timestamp.Add(lag)
				if !at.Before(g.config.CampaignEnd) {
					continue
				}
				order := g.order(fmt.Sprintf("spike_%05d", seq), at, true)
				order.LineItems = []campaign.LineItem{{
					Title:    productCatalog[g.rng.Intn(len(productCatalog))],
					Quantity: 1,
					Price:    order.TotalPrice,
				}}
				orders = append(orders, order)
			}
		}
	}
	return orders
}

func (g *CampaignDataGenerator) order(id string, at time.Time, fromSpike bool) campaign.Order {
	total := g.config.AvgOrderValue * (0.5 + g.rng.Float64())

	email := fmt.Sprintf("repeat_%03d@example.com", g.rng.Intn(200))
	if fromSpike && g.rng.Float64() < g.config.NewCustomerRate {
		email = fmt.Sprintf("new_%s@example.com", id)
	}

	item := productCatalog[g.rng.Intn(len(productCatalog))]
	return campaign.Order{
		ID:            core.OrderID(id),
		CreatedAt:     at,
		TotalPrice:    math.Round(total*100) / 100,
		CustomerEmail: email,
		LineItems:     []campaign.LineItem{{Title: item, Quantity: 1, Price: math.Round(total*100) / 100}},
	}
}

// poisson draws a Poisson-distributed count via Knuth's method. Rates here
// are small enough that the naive loop is fine.
func (g *CampaignDataGenerator) poisson(lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= g.rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}
